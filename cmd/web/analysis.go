package main

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talk-studio/draft"
	"talk-studio/gateway"
	"talk-studio/helper"
	"talk-studio/model"
)

// analyzeSpeech scores the current speech text through the Analysis
// Gateway and stores the result. Re-analysis counts against the editing
// session's allowance, checked before any network call.
func analyzeSpeech(c *gin.Context) {
	rawID := c.Param("speech_id")

	e, err := editorFor(c, rawID)
	if err != nil {
		abortSpeechError(c, err)
		return
	}

	if e.Record().IsDemo() {
		renderEditor(c, e, rawID, gin.H{"Notice": "Demo speeches cannot be analyzed"})
		return
	}

	speechID := e.Record().PersistedID()
	_, lookupErr := getAnalysisBySpeechID(speechID)
	isReanalysis := lookupErr == nil

	if isReanalysis {
		if err := e.NoteReanalysis(); err != nil {
			renderEditor(c, e, rawID, gin.H{
				"ErrorTitle":   "Analysis limit reached",
				"ErrorMessage": "You have used all re-analyses for this session. Reload the editor to analyze again."})
			return
		}
	}

	scores, err := gw.Analyze(c.Request.Context(), e.Content())
	if err != nil {
		helper.Log.Warnw("speech analysis failed", "error", err, "speech", speechID)
		renderEditor(c, e, rawID, gin.H{"ErrorTitle": "Analysis failed", "ErrorMessage": err.Error()})
		return
	}

	if err := upsertAnalysis(c.Request.Context(), speechID, scores); err != nil {
		renderEditor(c, e, rawID, gin.H{"ErrorTitle": "Analysis failed", "ErrorMessage": "Could not store the analysis result"})
		return
	}

	renderEditor(c, e, rawID, gin.H{"Notice": "Analysis complete!"})
}

// Fetch the analysis for a speech, if one exists
func getAnalysisBySpeechID(speechID uint) (*model.Analysis, error) {
	var analysis model.Analysis

	if err := db.Where(&model.Analysis{SpeechID: speechID}).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, draft.ErrNotFound
		}
		return nil, err
	}

	return &analysis, nil
}

// upsertAnalysis writes the scores for a speech in one idempotent
// statement: at most one analysis exists per speech, so a conflict on the
// speech reference turns the insert into an update.
func upsertAnalysis(ctx context.Context, speechID uint, scores gateway.Scores) error {
	analysis := model.Analysis{
		SpeechID:          speechID,
		Logos:             scores.Logos,
		Pathos:            scores.Pathos,
		Ethos:             scores.Ethos,
		LogosDescription:  scores.LogosDescription,
		PathosDescription: scores.PathosDescription,
		EthosDescription:  scores.EthosDescription,
		OverallScore:      scores.Overall(),
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "speech_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"logos", "pathos", "ethos",
			"logos_description", "pathos_description", "ethos_description",
			"overall_score", "updated_at",
		}),
	}).Create(&analysis).Error
}
