package runtime

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/thesecretlab-dev/poevm/consts"
)

type metrics struct {
	blocksExecuted      prometheus.Counter
	blocksRejected      prometheus.Counter
	extrinsicsSucceeded prometheus.Counter
	extrinsicsFailed    *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		blocksExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: consts.Name,
			Name:      "blocks_executed",
			Help:      "number of blocks whose extrinsics were applied",
		}),
		blocksRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: consts.Name,
			Name:      "blocks_rejected",
			Help:      "number of blocks rejected for a block number mismatch",
		}),
		extrinsicsSucceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: consts.Name,
			Name:      "extrinsics_succeeded",
			Help:      "number of extrinsics dispatched without error",
		}),
		extrinsicsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: consts.Name,
			Name:      "extrinsics_failed",
			Help:      "number of extrinsics whose dispatch returned an error",
		}, []string{"type"}),
	}
	return m, errors.Join(
		reg.Register(m.blocksExecuted),
		reg.Register(m.blocksRejected),
		reg.Register(m.extrinsicsSucceeded),
		reg.Register(m.extrinsicsFailed),
	)
}
