package contracts

// IndicatorSet is the latest defined value of each indicator.
// A nil field means the rolling window never filled at the series tail;
// it serialises as null and is excluded from scoring.
// ⭐ SSOT: S1 → S3 지표 전달 (JSON 키는 외부 클라이언트와 호환)
type IndicatorSet struct {
	Symbol string `json:"symbol"`

	RSI    *float64 `json:"RSI"`
	MACD   *float64 `json:"MACD"`
	Signal *float64 `json:"Signal"`

	BollUpper  *float64 `json:"BOLL_UPPER"`
	BollMiddle *float64 `json:"BOLL_MIDDLE"`
	BollLower  *float64 `json:"BOLL_LOWER"`
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}

// HasTrend reports whether both MACD and its signal are defined
func (s *IndicatorSet) HasTrend() bool {
	return s != nil && s.MACD != nil && s.Signal != nil
}
