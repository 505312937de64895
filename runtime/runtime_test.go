package runtime

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/thesecretlab-dev/poevm/balances"
	"github.com/thesecretlab-dev/poevm/claims"
	"github.com/thesecretlab-dev/poevm/genesis"
)

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func newRuntime(t *testing.T) *Runtime {
	t.Helper()
	rt, err := New(memdb.New(), Config{})
	require.NoError(t, err)
	require.NoError(t, genesis.Default().InitializeState(rt.Balances()))
	return rt
}

type RuntimeSuite struct {
	suite.Suite

	rt   *Runtime
	logs *bytes.Buffer
	ctx  context.Context

	jae, foo, bar ids.ShortID
}

func TestRuntimeSuite(t *testing.T) {
	suite.Run(t, new(RuntimeSuite))
}

func (s *RuntimeSuite) SetupTest() {
	s.ctx = context.Background()
	s.logs = &bytes.Buffer{}
	log := logging.NewLogger("", logging.NewWrappedCore(logging.Verbo, nopCloser{s.logs}, logging.JSON.ConsoleEncoder()))

	rt, err := New(memdb.New(), Config{Log: log, Registerer: prometheus.NewRegistry()})
	s.Require().NoError(err)
	s.Require().NoError(genesis.Default().InitializeState(rt.Balances()))
	s.rt = rt

	s.jae = genesis.DevAddress("jae")
	s.foo = genesis.DevAddress("foo")
	s.bar = genesis.DevAddress("bar")
}

func (s *RuntimeSuite) requireBalance(who ids.ShortID, want uint64) {
	bal, err := s.rt.Balances().Balance(who)
	s.Require().NoError(err)
	s.Require().Equal(want, bal)
}

func (s *RuntimeSuite) requireBlockNumber(want uint64) {
	n, err := s.rt.System().BlockNumber()
	s.Require().NoError(err)
	s.Require().Equal(want, n)
}

func (s *RuntimeSuite) requireOwner(content ids.ID, want ids.ShortID) {
	owner, ok, err := s.rt.Claims().Claim(content)
	s.Require().NoError(err)
	s.Require().True(ok)
	s.Require().Equal(want, owner)
}

func (s *RuntimeSuite) block(number uint64, xs ...Extrinsic) Block {
	return Block{Header: Header{BlockNumber: number}, Extrinsics: xs}
}

func (s *RuntimeSuite) TestExecuteBlockTransfers() {
	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(1,
		Extrinsic{Caller: s.jae, Call: Transfer(s.foo, 30)},
		Extrinsic{Caller: s.jae, Call: Transfer(s.bar, 20)},
	)))

	s.requireBalance(s.jae, 50)
	s.requireBalance(s.foo, 30)
	s.requireBalance(s.bar, 20)
	s.requireBlockNumber(1)

	nonce, err := s.rt.System().Nonce(s.jae)
	s.Require().NoError(err)
	s.Require().Equal(uint64(2), nonce)

	s.Require().InDelta(2, testutil.ToFloat64(s.rt.metrics.extrinsicsSucceeded), 0)
	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.blocksExecuted), 0)
}

func (s *RuntimeSuite) TestExecuteBlockNumberMismatch() {
	err := s.rt.ExecuteBlock(s.ctx, s.block(2,
		Extrinsic{Caller: s.jae, Call: Transfer(s.foo, 30)},
	))
	s.Require().ErrorIs(err, ErrBlockNumberMismatch)

	s.requireBalance(s.jae, 100)
	s.requireBalance(s.foo, 0)
	// The increment is kept, so the next block must declare 2.
	s.requireBlockNumber(1)

	nonces, err := s.rt.System().Nonces()
	s.Require().NoError(err)
	s.Require().Empty(nonces)
	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.blocksRejected), 0)

	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(2,
		Extrinsic{Caller: s.jae, Call: Transfer(s.foo, 30)},
	)))
	s.requireBalance(s.foo, 30)
	s.requireBlockNumber(2)
}

func (s *RuntimeSuite) TestFailingExtrinsicDoesNotStopBlock() {
	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(1,
		Extrinsic{Caller: s.foo, Call: Transfer(s.bar, 5)},
		Extrinsic{Caller: s.jae, Call: Transfer(s.foo, 10)},
	)))

	s.requireBalance(s.jae, 90)
	s.requireBalance(s.foo, 10)
	s.requireBalance(s.bar, 0)

	nonces, err := s.rt.System().Nonces()
	s.Require().NoError(err)
	s.Require().Equal(map[ids.ShortID]uint64{s.foo: 1, s.jae: 1}, nonces)

	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.extrinsicsFailed.WithLabelValues(TransferType)), 0)
	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.extrinsicsSucceeded), 0)
	s.Require().Contains(s.logs.String(), "extrinsic failed")
	s.Require().Contains(s.logs.String(), balances.ErrInsufficientFunds.Error())
}

func (s *RuntimeSuite) TestClaimsAcrossBlocks() {
	content := claims.ContentID([]byte("hello world"))

	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(1,
		Extrinsic{Caller: s.jae, Call: CreateClaim(content)},
	)))
	s.requireOwner(content, s.jae)

	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(2,
		Extrinsic{Caller: s.foo, Call: CreateClaim(content)},
		Extrinsic{Caller: s.foo, Call: RevokeClaim(content)},
	)))
	s.requireOwner(content, s.jae)
	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.extrinsicsFailed.WithLabelValues(CreateClaimType)), 0)
	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.extrinsicsFailed.WithLabelValues(RevokeClaimType)), 0)

	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(3,
		Extrinsic{Caller: s.jae, Call: RevokeClaim(content)},
		Extrinsic{Caller: s.foo, Call: CreateClaim(content)},
	)))
	s.requireOwner(content, s.foo)

	nonce, err := s.rt.System().Nonce(s.foo)
	s.Require().NoError(err)
	s.Require().Equal(uint64(3), nonce)
}

func (s *RuntimeSuite) TestDispatchReturnsModuleErrors() {
	s.Require().ErrorIs(s.rt.Dispatch(s.ctx, s.foo, Transfer(s.bar, 1)), balances.ErrInsufficientFunds)
	s.Require().ErrorIs(s.rt.Dispatch(s.ctx, s.foo, RevokeClaim(ids.GenerateTestID())), claims.ErrClaimNotFound)
	s.Require().NoError(s.rt.Dispatch(s.ctx, s.jae, Transfer(s.bar, 1)))
	s.requireBalance(s.bar, 1)
}

func (s *RuntimeSuite) TestDispatchUnknownCall() {
	s.Require().ErrorIs(s.rt.Dispatch(s.ctx, s.jae, nil), ErrUnknownCall)
	s.Require().ErrorIs(s.rt.Dispatch(s.ctx, s.jae, &BalancesCall{}), balances.ErrUnknownCall)
	s.Require().ErrorIs(s.rt.Dispatch(s.ctx, s.jae, &ClaimsCall{}), claims.ErrUnknownCall)
}

func (s *RuntimeSuite) TestNilCallExtrinsicIsSkipped() {
	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(1,
		Extrinsic{Caller: s.jae},
	)))
	nonce, err := s.rt.System().Nonce(s.jae)
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), nonce)
	s.Require().InDelta(1, testutil.ToFloat64(s.rt.metrics.extrinsicsFailed.WithLabelValues("unknown")), 0)
}

func (s *RuntimeSuite) TestSnapshotIsSorted() {
	content := claims.ContentID([]byte("doc"))
	s.Require().NoError(s.rt.ExecuteBlock(s.ctx, s.block(1,
		Extrinsic{Caller: s.jae, Call: Transfer(s.foo, 10)},
		Extrinsic{Caller: s.jae, Call: Transfer(s.bar, 10)},
		Extrinsic{Caller: s.foo, Call: CreateClaim(content)},
	)))

	snap, err := s.rt.Snapshot()
	s.Require().NoError(err)
	s.Require().Equal(uint64(1), snap.BlockNumber)
	s.Require().Len(snap.Balances, 3)
	s.Require().Len(snap.Nonces, 2)
	s.Require().Equal([]ClaimOwner{{Claim: content, Owner: s.foo}}, snap.Claims)
	for i := 1; i < len(snap.Balances); i++ {
		s.Require().Negative(bytes.Compare(snap.Balances[i-1].Address[:], snap.Balances[i].Address[:]))
	}

	root, err := s.rt.StateRoot()
	s.Require().NoError(err)
	s.Require().Equal(root, snap.StateRoot)
}

func TestStateRootIsDeterministic(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	jae, foo := genesis.DevAddress("jae"), genesis.DevAddress("foo")
	blk := Block{
		Header: Header{BlockNumber: 1},
		Extrinsics: []Extrinsic{
			{Caller: jae, Call: Transfer(foo, 7)},
			{Caller: foo, Call: CreateClaim(claims.ContentID([]byte("x")))},
		},
	}

	a, b := newRuntime(t), newRuntime(t)
	require.NoError(a.ExecuteBlock(ctx, blk))
	require.NoError(b.ExecuteBlock(ctx, blk))

	rootA, err := a.StateRoot()
	require.NoError(err)
	rootB, err := b.StateRoot()
	require.NoError(err)
	require.Equal(rootA, rootB)

	c := newRuntime(t)
	blk.Extrinsics[0].Call = Transfer(foo, 8)
	require.NoError(c.ExecuteBlock(ctx, blk))
	rootC, err := c.StateRoot()
	require.NoError(err)
	require.NotEqual(rootA, rootC)
}

func TestNewRejectsDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(memdb.New(), Config{Registerer: reg})
	require.NoError(t, err)
	_, err = New(memdb.New(), Config{Registerer: reg})
	require.Error(t, err)
}
