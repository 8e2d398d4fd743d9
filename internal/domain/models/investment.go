package models

type InvestmentTip struct {
	Title  string `json:"title"`
	Advice string `json:"advice"`
}

type SectorStrategy struct {
	Sector string          `json:"sector"`
	Icon   string          `json:"icon"`
	Tips   []InvestmentTip `json:"tips"`
}

type InvestmentStrategy struct {
	InitialCapital float64          `json:"initialCapital"`
	Methodology    string           `json:"methodology"`
	Sectors        []SectorStrategy `json:"sectors"`
}
