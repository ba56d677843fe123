package domain

// SupportTier classifies how well connected a loan's lenders are to its borrower.
type SupportTier string

const (
	SupportStrong   SupportTier = "STRONG"
	SupportModerate SupportTier = "MODERATE"
	SupportWeak     SupportTier = "WEAK"
	SupportNone     SupportTier = "NONE"
)

// LenderConnection is the per-lender detail of a LoanSocialSupport.
type LenderConnection struct {
	Address           string
	MutualConnections int
	IsConnected       bool
}

// LoanSocialSupport aggregates proximity between a borrower and every lender
// currently backing one loan.
type LoanSocialSupport struct {
	BorrowerAddress          string
	TotalLenders             int
	ConnectedLenderCount     int
	AverageMutualConnections float64
	PercentConnected         int
	SupportTier              SupportTier
	PerLenderDetail          []LenderConnection
}

// NoLenders is the well-defined result for a loan nobody has funded yet.
func NoLenders(borrowerAddress string) LoanSocialSupport {
	return LoanSocialSupport{
		BorrowerAddress: borrowerAddress,
		SupportTier:     SupportNone,
	}
}
