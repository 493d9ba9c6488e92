package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	reports "billing-reports/internal/reports/domain"
)

// BillQuery asks the upstream API for bill records of one report kind.
// Service narrows the query to a single service group when set.
type BillQuery struct {
	Kind    string
	From    reports.PeriodKey
	To      reports.PeriodKey
	Service string
}

// RecordSource fetches raw bill payloads. The normalizer owns all shape
// knowledge, so the source returns untyped maps.
type RecordSource interface {
	FetchBills(ctx context.Context, query BillQuery) ([]map[string]any, error)
}

// AccountSource is an optional RecordSource capability: account master
// data used to enrich pivot rows with fields bill records do not carry
// (file reference, preparer).
type AccountSource interface {
	FetchAccounts(ctx context.Context, costCenter string) ([]map[string]any, error)
}

// Renderer turns a finished document into file bytes.
type Renderer interface {
	Render(doc reports.Document) ([]byte, error)
	Ext() string
	ContentType() string
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Export run states. Each run starts at idle and returns to idle whether
// it completes or aborts; nothing survives across runs.
type exportState string

const (
	stateIdle        exportState = "idle"
	stateFetching    exportState = "fetching"
	stateNormalizing exportState = "normalizing"
	stateAggregating exportState = "aggregating"
	statePivoting    exportState = "pivoting"
	stateRendering   exportState = "rendering"
	stateSaving      exportState = "saving"
)

// ExportRequest selects the report kind, output format and period range.
// A zero range resolves to the default report period.
type ExportRequest struct {
	Kind   string
	Format string
	From   reports.PeriodKey
	To     reports.PeriodKey
}

// ExportResult is one finished export: document bytes plus the filename
// stamped at save time.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
	Dropped     int
	Summary     reports.Summary
}

// ExportService drives one export run through
// fetch -> normalize -> aggregate -> pivot -> render -> save.
type ExportService struct {
	source    RecordSource
	config    ReportConfig
	renderers map[string]Renderer
	clock     Clock
	logger    *log.Logger
}

// NewExportService constructs the service.
func NewExportService(source RecordSource, config ReportConfig, renderers map[string]Renderer, clock Clock, logger *log.Logger) (*ExportService, error) {
	if source == nil {
		return nil, errors.New("export service: nil record source")
	}
	if len(renderers) == 0 {
		return nil, errors.New("export service: no renderers")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &ExportService{
		source:    source,
		config:    config,
		renderers: renderers,
		clock:     clock,
		logger:    logger,
	}, nil
}

// Kinds lists the configured report kinds.
func (s *ExportService) Kinds() []string {
	return s.config.Kinds()
}

// DefaultPeriod is the report period applied when a request omits an
// explicit range: the month before the clock's current month.
func (s *ExportService) DefaultPeriod() reports.PeriodKey {
	return reports.PeriodOf(s.clock.Now()).Prev()
}

// Export runs the full pipeline for one request. Fetch and render
// failures abort the run with a classified error and no partial output;
// records with unparseable periods are dropped and counted, never fatal.
func (s *ExportService) Export(ctx context.Context, req ExportRequest) (*ExportResult, error) {
	def, err := s.config.Definition(req.Kind)
	if err != nil {
		return nil, err
	}
	renderer, ok := s.renderers[req.Format]
	if !ok {
		return nil, fmt.Errorf("export service: no renderer for format %q", req.Format)
	}

	from, to := req.From, req.To
	if from.IsZero() || to.IsZero() {
		from = s.DefaultPeriod()
		to = from
	}
	if to.Before(from) {
		return nil, fmt.Errorf("export service: inverted period range %s..%s", from.Full(), to.Full())
	}

	state := stateFetching
	rawRecords, err := s.fetchAll(ctx, def, req.Kind, from, to)
	if err != nil {
		return nil, s.abort(req.Kind, state, fmt.Errorf("%w: %v", reports.ErrFetchFailed, err))
	}
	if len(rawRecords) == 0 {
		return nil, s.abort(req.Kind, state, reports.ErrNoRecords)
	}

	state = stateNormalizing
	records := NormalizeAll(rawRecords)

	// History for the trend block is everything fetched before the
	// requested range; the pivot covers the range itself.
	var current, history []reports.BillRecord
	for _, r := range records {
		if r.PeriodValid && r.Period.Before(from) {
			history = append(history, r)
			continue
		}
		current = append(current, r)
	}

	state = stateAggregating
	result := reports.Aggregate(current, def.GroupFn(), def.Accrual())
	if len(result.Buckets) == 0 {
		return nil, s.abort(req.Kind, state, reports.ErrNoRecords)
	}
	if result.Dropped > 0 && s.logger != nil {
		s.logger.Printf("export %s: dropped %d records with unparseable periods", req.Kind, result.Dropped)
	}

	state = statePivoting
	table, err := reports.BuildPivot(result)
	if err != nil {
		return nil, s.abort(req.Kind, state, err)
	}
	s.attachTrends(table, history, def.GroupFn(), def.TrendWindow)
	s.enrichAccounts(ctx, table)

	state = stateRendering
	doc := reports.Document{
		Meta: reports.ReportMeta{
			Kind:              req.Kind,
			Title:             def.Title,
			Reference:         def.Reference,
			From:              from,
			To:                to,
			GeneratedAt:       s.clock.Now(),
			PreparedFor:       def.PreparedFor,
			PreparedBy:        def.PreparedBy,
			Signatories:       def.DomainSignatories(),
			SplitSheetsByYear: def.SplitByYear,
		},
		Pivot:   table,
		Summary: result.Summarize(),
	}
	data, err := renderer.Render(doc)
	if err != nil {
		return nil, s.abort(req.Kind, state, fmt.Errorf("%w: %v", reports.ErrRenderFailed, err))
	}

	// Filename is stamped at save time so it reflects when the document
	// was produced, not when records were fetched.
	state = stateSaving
	filename := fmt.Sprintf("%s-%s.%s", req.Kind, s.clock.Now().Format("20060102150405"), renderer.Ext())

	return &ExportResult{
		Filename:    filename,
		ContentType: renderer.ContentType(),
		Data:        data,
		Dropped:     result.Dropped,
		Summary:     doc.Summary,
	}, nil
}

// abort returns the run to idle with the failure surfaced once.
func (s *ExportService) abort(kind string, state exportState, err error) error {
	if s.logger != nil {
		s.logger.Printf("export %s: aborted while %s: %v", kind, state, err)
	}
	return err
}

// fetchAll retrieves raw records for every service group of the
// definition. Groups are fetched concurrently; the pipeline waits for all
// of them before aggregating, so partial results are never rendered.
func (s *ExportService) fetchAll(ctx context.Context, def ReportDefinition, kind string, from, to reports.PeriodKey) ([]map[string]any, error) {
	if len(def.ServiceGroups) == 0 {
		return s.source.FetchBills(ctx, BillQuery{Kind: kind, From: from, To: to})
	}

	group, ctx := errgroup.WithContext(ctx)
	batches := make([][]map[string]any, len(def.ServiceGroups))
	for i, service := range def.ServiceGroups {
		i, service := i, service
		group.Go(func() error {
			batch, err := s.source.FetchBills(ctx, BillQuery{Kind: kind, From: from, To: to, Service: service})
			if err != nil {
				return err
			}
			batches[i] = batch
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	var merged []map[string]any
	for _, batch := range batches {
		merged = append(merged, batch...)
	}
	return merged, nil
}

// enrichAccounts overlays row account fields with master data from the
// accounts endpoint when the source provides one. The sample-derived
// fields stay in place on lookup miss or fetch failure; enrichment never
// aborts a run.
func (s *ExportService) enrichAccounts(ctx context.Context, table *reports.PivotTable) {
	src, ok := s.source.(AccountSource)
	if !ok {
		return
	}
	payloads, err := src.FetchAccounts(ctx, "")
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("account enrichment skipped: %v", err)
		}
		return
	}

	byRef := make(map[string]reports.Account, len(payloads))
	for _, raw := range payloads {
		acct := NormalizeAccount(raw)
		if acct.ID != "" {
			byRef[acct.ID] = acct
		}
		if acct.AccountNo != "" && acct.AccountNo != reports.DisplayFallback {
			byRef[acct.AccountNo] = acct
		}
	}

	for i := range table.Rows {
		row := &table.Rows[i]
		acct, ok := byRef[row.Account.AccountNo]
		if !ok {
			if acct, ok = byRef[string(row.Key)]; !ok {
				continue
			}
		}
		row.Account.FileRef = acct.FileRef
		row.Account.PreparedBy = acct.PreparedBy
		if row.Account.Beneficiary == "" || row.Account.Beneficiary == reports.DisplayFallback {
			row.Account.Beneficiary = acct.Beneficiary
		}
		if row.Account.Location == "" || row.Account.Location == reports.DisplayFallback {
			row.Account.Location = acct.Location
		}
	}
}

// attachTrends builds each row's trailing prior-period block from the
// history slice, keyed by the same grouping as the pivot rows.
func (s *ExportService) attachTrends(table *reports.PivotTable, history []reports.BillRecord, keyFn reports.GroupKeyFn, window int) {
	byGroup := make(map[reports.GroupKey][]reports.BillRecord)
	for _, r := range history {
		key, _ := keyFn(r)
		byGroup[key] = append(byGroup[key], r)
	}
	for i := range table.Rows {
		table.Rows[i].Trend = reports.BuildTrend(byGroup[table.Rows[i].Key], window)
	}
}
