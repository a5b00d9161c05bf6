package entity

import "time"

// Estados de un lead.
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusQualified = "qualified"
	LeadStatusProposal  = "proposal"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// LeadStatuses estados válidos (coinciden con el CHECK de la tabla leads).
var LeadStatuses = []string{
	LeadStatusNew, LeadStatusContacted, LeadStatusQualified,
	LeadStatusProposal, LeadStatusConverted, LeadStatusLost,
}

// Orígenes de un lead.
const (
	LeadSourceWebsite     = "website"
	LeadSourceReferral    = "referral"
	LeadSourceSocialMedia = "social_media"
	LeadSourcePaidAds     = "paid_ads"
	LeadSourceColdCall    = "cold_call"
	LeadSourceEmail       = "email"
	LeadSourceOther       = "other"
)

// LeadSources orígenes válidos.
var LeadSources = []string{
	LeadSourceWebsite, LeadSourceReferral, LeadSourceSocialMedia,
	LeadSourcePaidAds, LeadSourceColdCall, LeadSourceEmail, LeadSourceOther,
}

// Lead prospecto comercial convertible en SalesDisposition.
type Lead struct {
	ID                 string
	Name               string
	Email              string
	Phone              string
	CompanyName        string
	Source             string
	Status             string
	Notes              string
	AssignedTo         *string // users.id
	SalesDispositionID *string // se llena al convertir
	ConvertedAt        *time.Time
	CreatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsConverted indica si el lead ya generó una venta.
func (l *Lead) IsConverted() bool {
	return l.Status == LeadStatusConverted
}

// Contains helper para validar enums de texto.
func Contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
