package consts

import "github.com/ava-labs/avalanchego/ids"

const (
	Name    = "poevm"
	Version = "v0.1.0"
)

// ID is the padded name, matching how the chain identifies itself in logs and
// version output.
var ID ids.ID

func init() {
	b := make([]byte, ids.IDLen)
	copy(b, []byte(Name))
	vmID, err := ids.ToID(b)
	if err != nil {
		panic(err)
	}
	ID = vmID
}
