package consts

const (
	// Call TypeIDs
	TransferID    uint8 = 0
	CreateClaimID uint8 = 1
	RevokeClaimID uint8 = 2
)
