package claims

import (
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/stretchr/testify/require"

	"github.com/thesecretlab-dev/poevm/storage"
)

func account(name string) ids.ShortID {
	var id ids.ShortID
	copy(id[:], name)
	return id
}

func newPallet() *Pallet {
	return New(storage.ClaimDB(memdb.New()))
}

func requireOwner(t *testing.T, p *Pallet, content ids.ID, want ids.ShortID) {
	t.Helper()
	owner, ok, err := p.Claim(content)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want, owner)
}

func TestBasicProofOfExistence(t *testing.T) {
	require := require.New(t)
	p := newPallet()
	jae, jun, foo := account("jae"), account("jun"), account("foo")
	claim, token2, token3 := ContentID([]byte("claim")), ContentID([]byte("token2")), ContentID([]byte("token3"))

	_, ok, err := p.Claim(claim)
	require.NoError(err)
	require.False(ok)

	require.NoError(p.CreateClaim(jae, claim))
	require.NoError(p.CreateClaim(jun, token2))
	require.ErrorIs(p.RevokeClaim(jae, token2), ErrNotClaimOwner)
	require.ErrorIs(p.RevokeClaim(foo, token3), ErrClaimNotFound)

	requireOwner(t, p, claim, jae)
	requireOwner(t, p, token2, jun)
}

func TestClaimScenario(t *testing.T) {
	require := require.New(t)
	p := newPallet()
	jae, foo := account("jae"), account("foo")
	x := ContentID([]byte("X"))

	require.NoError(p.CreateClaim(jae, x))
	require.ErrorIs(p.CreateClaim(foo, x), ErrAlreadyClaimed)
	requireOwner(t, p, x, jae)

	require.ErrorIs(p.RevokeClaim(foo, x), ErrNotClaimOwner)
	requireOwner(t, p, x, jae)

	require.NoError(p.RevokeClaim(jae, x))
	_, ok, err := p.Claim(x)
	require.NoError(err)
	require.False(ok)

	all, err := p.Claims()
	require.NoError(err)
	require.Empty(all)
}

func TestOwnerCanReclaimAfterRevoke(t *testing.T) {
	require := require.New(t)
	p := newPallet()
	jae, foo := account("jae"), account("foo")
	x := ContentID([]byte("X"))

	require.NoError(p.CreateClaim(jae, x))
	require.ErrorIs(p.CreateClaim(jae, x), ErrAlreadyClaimed)
	require.NoError(p.RevokeClaim(jae, x))
	require.NoError(p.CreateClaim(foo, x))
	requireOwner(t, p, x, foo)
}

func TestDispatch(t *testing.T) {
	require := require.New(t)
	p := newPallet()
	jae, foo := account("jae"), account("foo")
	x := ContentID([]byte("X"))

	require.NoError(p.Dispatch(jae, &CreateClaim{Claim: x}))
	require.ErrorIs(p.Dispatch(foo, &RevokeClaim{Claim: x}), ErrNotClaimOwner)
	require.NoError(p.Dispatch(jae, &RevokeClaim{Claim: x}))
	require.ErrorIs(p.Dispatch(jae, &RevokeClaim{Claim: x}), ErrClaimNotFound)
	require.ErrorIs(p.Dispatch(jae, nil), ErrUnknownCall)
}

func TestContentIDIsStable(t *testing.T) {
	require := require.New(t)
	require.Equal(ContentID([]byte("X")), ContentID([]byte("X")))
	require.NotEqual(ContentID([]byte("X")), ContentID([]byte("Y")))
}

func TestCallBytesRoundTrip(t *testing.T) {
	require := require.New(t)
	x := ContentID([]byte("X"))

	create := &CreateClaim{Claim: x}
	parsed, err := UnmarshalCreateClaim(create.Bytes())
	require.NoError(err)
	require.Equal(create, parsed)

	revoke := &RevokeClaim{Claim: x}
	parsed, err = UnmarshalRevokeClaim(revoke.Bytes())
	require.NoError(err)
	require.Equal(revoke, parsed)

	_, err = UnmarshalRevokeClaim(create.Bytes())
	require.ErrorContains(err, "unexpected claim call typeID")

	_, err = UnmarshalCreateClaim(nil)
	require.ErrorIs(err, ErrUnmarshalEmptyCall)

	_, err = UnmarshalCreateClaim(append(create.Bytes(), 1))
	require.ErrorIs(err, ErrTrailingBytes)
}
