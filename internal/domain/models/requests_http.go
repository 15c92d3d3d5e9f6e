package models

// Requests for the advisor HTTP endpoints. Defined in domain for consistency and reuse.

type RecommendationRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required,max=12"`
	N       int    `query:"n" json:"n" default:"250" validate:"gte=30,lte=2000"`
	Refresh bool   `query:"refresh" json:"refresh"`
}

type RiskRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=12"`
	N      int    `query:"n" json:"n" default:"250" validate:"gte=30,lte=2000"`
}

type ValidationRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=12"`
	N      int    `query:"n" json:"n" default:"250" validate:"gte=30,lte=2000"`
}

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=12"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	Limit  int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=10000"`
}

type JournalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"omitempty,max=12"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=1000"`
}

type ScanRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=200,dive,max=12"`
	N       int      `json:"n" default:"250" validate:"gte=30,lte=2000"`
	Refresh bool     `json:"refresh"`
}
