package optimization

// CostModel prices generated assets. Each asset costs the sum of its sub-service
// unit costs.
type CostModel struct {
	VoicePerAsset   float64 `yaml:"voice_per_asset" json:"voicePerAsset"`
	VideoPerAsset   float64 `yaml:"video_per_asset" json:"videoPerAsset"`
	PublishPerAsset float64 `yaml:"publish_per_asset" json:"publishPerAsset"`
}

func DefaultCostModel() CostModel {
	return CostModel{
		VoicePerAsset:   0.03,
		VideoPerAsset:   0.22,
		PublishPerAsset: 0.02,
	}
}

func (c CostModel) UnitCost() float64 {
	return c.VoicePerAsset + c.VideoPerAsset + c.PublishPerAsset
}

func (c CostModel) CostOfAssets(n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * c.UnitCost()
}

// ROI is (revenue - cost) / cost, and exactly 0 when there is no cost.
func (c CostModel) ROI(revenue float64, assets int) float64 {
	cost := c.CostOfAssets(assets)
	if cost <= 0 {
		return 0
	}
	return (revenue - cost) / cost
}
