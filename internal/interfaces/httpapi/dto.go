package httpapi

import (
	"time"

	"github.com/riskibarqy/fantasy-insights/internal/domain/cohort"
)

// summaryDTO keeps the summary JSON contract and adds run metadata under meta.
type summaryDTO struct {
	GameWeek           int                     `json:"game_week"`
	ManagerCount       int                     `json:"manager_count"`
	AveragePoints      float64                 `json:"average_points"`
	HighestPoints      *int                    `json:"highest_points"`
	LowestPoints       *int                    `json:"lowest_points"`
	TemplateTeam       []cohort.OwnershipEntry `json:"template_team"`
	TemplateSquad      []cohort.OwnershipEntry `json:"template_squad"`
	MostCaptained      []cohort.OwnershipEntry `json:"most_captained"`
	ChipUsage          map[string]int          `json:"chip_usage"`
	MostTransferredIn  []cohort.OwnershipEntry `json:"most_transferred_in"`
	MostTransferredOut []cohort.OwnershipEntry `json:"most_transferred_out"`
	Meta               summaryMetaDTO          `json:"meta"`
}

type summaryMetaDTO struct {
	RunID       string    `json:"run_id"`
	LeagueID    string    `json:"league_id"`
	CohortSize  int       `json:"cohort_size"`
	FailedCount int       `json:"failed_count"`
	SyncedAt    time.Time `json:"synced_at"`
}

func summaryToDTO(item cohort.GameweekSummary) summaryDTO {
	return summaryDTO{
		GameWeek:           item.GameWeek,
		ManagerCount:       item.ManagerCount,
		AveragePoints:      item.AveragePoints,
		HighestPoints:      item.HighestPoints,
		LowestPoints:       item.LowestPoints,
		TemplateTeam:       item.TemplateTeam,
		TemplateSquad:      item.TemplateSquad,
		MostCaptained:      item.MostCaptained,
		ChipUsage:          item.ChipUsage,
		MostTransferredIn:  item.MostTransferredIn,
		MostTransferredOut: item.MostTransferredOut,
		Meta: summaryMetaDTO{
			RunID:       item.Meta.RunID,
			LeagueID:    item.Meta.LeagueID,
			CohortSize:  item.Meta.CohortSize,
			FailedCount: item.Meta.FailedCount,
			SyncedAt:    item.Meta.SyncedAt,
		},
	}
}
