package models

// Requests for the stock HTTP endpoints. Defined in domain for consistency and reuse.

type StockRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=12"`
}

type HistoryRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=12"`
	Days   int    `query:"days" json:"days" default:"365" validate:"gte=1,lte=365"`
}

type PredictRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=12"`
	Days   int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}

type TrendingRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type SearchRequest struct {
	Query string `param:"query" json:"query" validate:"required,max=64"`
	Limit int    `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type BatchRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,dive,required,max=12"`
}

// BarView is the wire shape of a HistoricalBar (calendar date, not timestamp).
type BarView struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// HistoryResponse is the wire shape of a history lookup.
type HistoryResponse struct {
	Symbol string    `json:"symbol"`
	Days   int       `json:"days"`
	Bars   []BarView `json:"bars"`
}

// NewBarView converts a bar to its wire shape.
func NewBarView(b HistoricalBar) BarView {
	return BarView{
		Date:   b.Date.UTC().Format("2006-01-02"),
		Open:   b.Open,
		High:   b.High,
		Low:    b.Low,
		Close:  b.Close,
		Volume: b.Volume,
	}
}

// NewHistoryResponse converts a bar slice to the wire shape.
func NewHistoryResponse(symbol string, days int, bars []HistoricalBar) HistoryResponse {
	views := make([]BarView, 0, len(bars))
	for _, b := range bars {
		views = append(views, NewBarView(b))
	}
	return HistoryResponse{Symbol: symbol, Days: days, Bars: views}
}
