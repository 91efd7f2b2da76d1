package models

type AnalysisResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis"`
}
