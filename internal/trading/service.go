package trading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/ths-gateway/internal/audit"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/influxdb"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/logging"
	"github.com/nerrad567/ths-gateway/internal/infrastructure/mqtt"
	"github.com/nerrad567/ths-gateway/internal/ths"
)

// recordChanSize bounds queued side effects. Entries beyond this are
// dropped with a warning so requests never block on them.
const recordChanSize = 256

// Native entry point names used for metrics.
const (
	opQueryData        = "QueryData"
	opSendOrder        = "SendOrder"
	opCancelOrder      = "CancelOrder"
	opQueryHistoryData = "QueryHistoryData"
)

// Terminal is the native session the service drives. *ths.Client
// satisfies it.
type Terminal interface {
	QueryData(category ths.QueryCategory) ([]byte, error)
	SendOrder(side ths.OrderSide, gddm, gpdm string, price float32, quantity int32) ([]byte, error)
	CancelOrder(orderID string) ([]byte, error)
	QueryHistoryData(category ths.HistoryCategory, beginDate, endDate string) ([]byte, error)
	LoggedIn() bool
}

// EventPublisher sends order events. *mqtt.Client satisfies it.
type EventPublisher interface {
	PublishEvent(topic string, v any) error
}

// MetricsRecorder records native call timings. *influxdb.Client satisfies it.
type MetricsRecorder interface {
	WriteNativeCall(op, category, outcome string, duration time.Duration)
}

// Deps holds the dependencies of a Service. Only Terminal is required;
// the side-effect sinks are skipped when nil.
type Deps struct {
	Terminal Terminal
	Account  string
	Logger   *logging.Logger
	Audit    audit.Repository
	Events   EventPublisher
	Topics   mqtt.Topics
	Metrics  MetricsRecorder
}

// Service serves trading requests against one logged-in session.
//
// Thread Safety:
//   - All request methods are safe for concurrent use. Native calls are not
//     serialised; the library is trusted to handle concurrent calls.
type Service struct {
	terminal Terminal
	account  string
	logger   *logging.Logger
	audit    audit.Repository
	events   EventPublisher
	topics   mqtt.Topics
	metrics  MetricsRecorder
	records  chan *audit.Entry
}

// New creates a Service. Run must be started for audit entries and events
// to be delivered.
func New(deps Deps) (*Service, error) {
	if deps.Terminal == nil {
		return nil, fmt.Errorf("terminal is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Service{
		terminal: deps.Terminal,
		account:  deps.Account,
		logger:   logger,
		audit:    deps.Audit,
		events:   deps.Events,
		topics:   deps.Topics,
		metrics:  deps.Metrics,
		records:  make(chan *audit.Entry, recordChanSize),
	}, nil
}

// Account returns the display name of the logged-in account.
func (s *Service) Account() string {
	return s.account
}

// LoggedIn reports whether the underlying session is live.
func (s *Service) LoggedIn() bool {
	return s.terminal.LoggedIn()
}

// Query returns today's data for a query category name (zijin, chicang,
// weituo, chengjiao, weituokeche, gudong).
func (s *Service) Query(ctx context.Context, name string) (json.RawMessage, error) {
	category, err := ths.ParseQueryCategory(name)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, opQueryData, category.String(), func() ([]byte, error) {
		return s.terminal.QueryData(category)
	})
}

// SendOrder places a buy or sell order. The price is passed to the
// library as float32 and neither price nor quantity is range checked.
func (s *Service) SendOrder(ctx context.Context, sideName string, req OrderRequest) (json.RawMessage, error) {
	side, err := ths.ParseOrderSide(sideName)
	if err != nil {
		return nil, err
	}

	price, _ := req.Price.Float64()
	data, err := s.call(ctx, opSendOrder, side.String(), func() ([]byte, error) {
		return s.terminal.SendOrder(side, req.ShareholderCode, req.Instrument, float32(price), req.Quantity)
	})

	s.enqueue(&audit.Entry{
		Action:          audit.ActionOrder,
		Account:         s.account,
		Side:            side.String(),
		ShareholderCode: req.ShareholderCode,
		Instrument:      req.Instrument,
		Price:           req.Price.String(),
		Quantity:        req.Quantity,
		Success:         err == nil,
		Message:         outcomeMessage(data, err),
		RequestID:       RequestID(ctx),
	})
	return data, err
}

// CancelOrder cancels a pending order.
func (s *Service) CancelOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	data, err := s.call(ctx, opCancelOrder, "", func() ([]byte, error) {
		return s.terminal.CancelOrder(orderID)
	})

	s.enqueue(&audit.Entry{
		Action:    audit.ActionCancel,
		Account:   s.account,
		OrderID:   orderID,
		Success:   err == nil,
		Message:   outcomeMessage(data, err),
		RequestID: RequestID(ctx),
	})
	return data, err
}

// QueryHistory returns historical orders (weituo) or fills (chengjiao)
// between two dates. Dates are passed through unparsed.
func (s *Service) QueryHistory(ctx context.Context, name, beginDate, endDate string) (json.RawMessage, error) {
	category, err := ths.ParseHistoryCategory(name)
	if err != nil {
		return nil, err
	}
	return s.call(ctx, opQueryHistoryData, category.String(), func() ([]byte, error) {
		return s.terminal.QueryHistoryData(category, beginDate, endDate)
	})
}

// call runs one native call, decodes its buffer and records the outcome.
func (s *Service) call(ctx context.Context, op, category string, fn func() ([]byte, error)) (json.RawMessage, error) {
	start := time.Now()
	buf, err := fn()
	if err != nil {
		s.observe(op, category, callOutcome(err), time.Since(start))
		var nativeErr *ths.NativeError
		if errors.As(err, &nativeErr) {
			s.logger.Info("native call rejected",
				"op", op,
				"category", category,
				"code", nativeErr.Code,
				"message", nativeErr.Message(),
				"request_id", RequestID(ctx),
			)
		}
		return nil, err
	}

	data, err := ths.DecodeResult(buf)
	if err != nil {
		s.observe(op, category, influxdb.OutcomeInvalid, time.Since(start))
		s.logger.Error("native library broke its output contract",
			"op", op,
			"category", category,
			"error", err,
			"request_id", RequestID(ctx),
		)
		return nil, err
	}

	s.observe(op, category, influxdb.OutcomeOK, time.Since(start))
	return data, nil
}

func (s *Service) observe(op, category, outcome string, d time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.WriteNativeCall(op, category, outcome, d)
}

func callOutcome(err error) string {
	var nativeErr *ths.NativeError
	if errors.As(err, &nativeErr) {
		return influxdb.OutcomeRejected
	}
	return influxdb.OutcomeError
}

// outcomeMessage is the text kept in the audit trail: the broker's
// diagnostic on failure, the decoded payload on success.
func outcomeMessage(data json.RawMessage, err error) string {
	var nativeErr *ths.NativeError
	switch {
	case errors.As(err, &nativeErr):
		return nativeErr.Message()
	case err != nil:
		return err.Error()
	default:
		return string(data)
	}
}
