// Package runtime composes the system, balances and claims modules into a
// deterministic state transition function over blocks of extrinsics.
package runtime

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/thesecretlab-dev/poevm/balances"
	"github.com/thesecretlab-dev/poevm/claims"
	"github.com/thesecretlab-dev/poevm/storage"
	"github.com/thesecretlab-dev/poevm/system"
)

var (
	ErrBlockNumberMismatch = errors.New("block number does not match expected")
	ErrUnknownCall         = errors.New("unknown runtime call")
)

type Config struct {
	Log        logging.Logger
	Tracer     trace.Tracer
	Registerer prometheus.Registerer
}

// Runtime is not safe for concurrent use. Blocks must be executed one at a
// time, in order.
type Runtime struct {
	db database.Database

	system   *system.Pallet
	balances *balances.Pallet
	claims   *claims.Pallet

	log     logging.Logger
	tracer  trace.Tracer
	metrics *metrics
}

// New builds a runtime over [db]. Each module gets its own prefixed view of
// [db]; nothing else should write to it.
func New(db database.Database, cfg Config) (*Runtime, error) {
	if cfg.Log == nil {
		cfg.Log = logging.NoLog{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = trace.Noop
	}
	if cfg.Registerer == nil {
		cfg.Registerer = prometheus.NewRegistry()
	}
	m, err := newMetrics(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register runtime metrics: %w", err)
	}
	return &Runtime{
		db:       db,
		system:   system.New(storage.SystemDB(db)),
		balances: balances.New(storage.BalanceDB(db)),
		claims:   claims.New(storage.ClaimDB(db)),
		log:      cfg.Log,
		tracer:   cfg.Tracer,
		metrics:  m,
	}, nil
}

func (r *Runtime) System() *system.Pallet {
	return r.system
}

func (r *Runtime) Balances() *balances.Pallet {
	return r.balances
}

func (r *Runtime) Claims() *claims.Pallet {
	return r.claims
}

// Dispatch forwards [call] to the module that owns it and returns that
// module's result unchanged.
func (r *Runtime) Dispatch(ctx context.Context, caller ids.ShortID, call Call) error {
	_, span := r.tracer.Start(ctx, "Runtime.Dispatch", oteltrace.WithAttributes(
		attribute.String("type", callType(call)),
	))
	defer span.End()

	switch c := call.(type) {
	case *BalancesCall:
		return r.balances.Dispatch(caller, c.Call)
	case *ClaimsCall:
		return r.claims.Dispatch(caller, c.Call)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownCall, call)
	}
}

// ExecuteBlock advances the block number and applies every extrinsic of [blk]
// in order.
//
// A block whose declared number is not the next block number is rejected
// before any extrinsic runs; the block number stays incremented. Each caller's
// nonce is bumped before its call is dispatched, whether or not the call
// succeeds. A failing extrinsic is logged and skipped.
func (r *Runtime) ExecuteBlock(ctx context.Context, blk Block) error {
	ctx, span := r.tracer.Start(ctx, "Runtime.ExecuteBlock", oteltrace.WithAttributes(
		attribute.Int64("blockNumber", int64(blk.Header.BlockNumber)),
		attribute.Int("extrinsics", len(blk.Extrinsics)),
	))
	defer span.End()

	if err := r.system.IncrementBlockNumber(); err != nil {
		return err
	}
	number, err := r.system.BlockNumber()
	if err != nil {
		return err
	}
	if number != blk.Header.BlockNumber {
		r.metrics.blocksRejected.Inc()
		return fmt.Errorf("%w: (expected=%d, declared=%d)", ErrBlockNumberMismatch, number, blk.Header.BlockNumber)
	}

	var failed int
	for i, x := range blk.Extrinsics {
		if err := r.system.IncrementNonce(x.Caller); err != nil {
			return err
		}
		if err := r.Dispatch(ctx, x.Caller, x.Call); err != nil {
			failed++
			typ := callType(x.Call)
			r.metrics.extrinsicsFailed.WithLabelValues(typ).Inc()
			r.log.Warn("extrinsic failed",
				zap.Uint64("blockNumber", number),
				zap.Int("extrinsicIndex", i),
				zap.Stringer("extrinsicID", x.ID()),
				zap.Stringer("caller", x.Caller),
				zap.String("type", typ),
				zap.Error(err),
			)
			continue
		}
		r.metrics.extrinsicsSucceeded.Inc()
	}

	r.metrics.blocksExecuted.Inc()
	r.log.Debug("executed block",
		zap.Uint64("blockNumber", number),
		zap.Int("extrinsics", len(blk.Extrinsics)),
		zap.Int("failed", failed),
	)
	return nil
}
