package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

type TourPackageMailTour struct {
	Name         string  `json:"name"`
	DurationDays int32   `json:"durationDays"`
	Cost         float64 `json:"cost"`
}

type TourPackageMailData struct {
	RegionName  string                `json:"regionName"`
	Tours       []TourPackageMailTour `json:"tours"`
	Attractions []string              `json:"attractions"`
	TotalDays   int64                 `json:"totalDays"`
	TotalCost   float64               `json:"totalCost"`
	TotalValue  int64                 `json:"totalValue"`
}
