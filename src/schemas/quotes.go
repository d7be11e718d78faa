package schemas

type WarmQuotesResponse struct {
	Warmed int      `json:"warmed"`
	Failed []string `json:"failed"`
}
