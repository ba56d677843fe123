package domain

// RiskTier classifies how risky a borrower looks from a viewer's position.
type RiskTier string

const (
	RiskLow    RiskTier = "LOW"
	RiskMedium RiskTier = "MEDIUM"
	RiskHigh   RiskTier = "HIGH"
)

// QualityTier classifies the averaged quality score of a pair.
type QualityTier string

const (
	QualityHigh   QualityTier = "HIGH"
	QualityMedium QualityTier = "MEDIUM"
	QualityLow    QualityTier = "LOW"
)

// ProximityScore is the pairwise social-distance result between a borrower
// and a viewer (typically a prospective lender).
type ProximityScore struct {
	BorrowerID            int64
	ViewerID              int64
	MutualCount           int
	EffectiveMutualWeight float64
	SocialDistance        int
	RiskTier              RiskTier
	OverlapPercent        float64
	QualityTier           QualityTier
	AverageQuality        float64
	BorrowerNetworkSize   int
	ViewerNetworkSize     int
	BorrowerFollowsViewer bool
	ViewerFollowsBorrower bool
}

// NoConnection is the conservative result used whenever proximity cannot be
// established: unknown identities, unreachable provider, cancelled request.
func NoConnection(borrowerID, viewerID int64) ProximityScore {
	return ProximityScore{
		BorrowerID:  borrowerID,
		ViewerID:    viewerID,
		RiskTier:    RiskHigh,
		QualityTier: QualityLow,
	}
}
