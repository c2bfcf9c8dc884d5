package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/asticode/go-astisub"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"talk-studio/demo"
	"talk-studio/draft"
	"talk-studio/helper"
	"talk-studio/model"
)

// speechStore adapts the GORM layer to draft.Store. The update is a
// single Save call and is treated as atomic.
type speechStore struct{}

func (speechStore) Save(ctx context.Context, id uint, brief draft.Brief, content, status string) error {
	var speech model.Speech
	if err := db.WithContext(ctx).First(&speech, id).Error; err != nil {
		return err
	}

	speech.Title = brief.Title
	speech.Topic = brief.Topic
	speech.KeyMessage = brief.KeyMessage
	speech.AudienceDemographics = brief.AudienceDemographics
	speech.SpeakerBackground = brief.SpeakerBackground
	speech.DurationMinutes = brief.DurationMinutes
	speech.Tone = brief.Tone
	speech.Content = content
	speech.Status = status

	return db.WithContext(ctx).Save(&speech).Error
}

// briefOf extracts the brief fields from a persisted speech.
func briefOf(speech *model.Speech) draft.Brief {
	return draft.Brief{
		Title:                speech.Title,
		Topic:                speech.Topic,
		KeyMessage:           speech.KeyMessage,
		AudienceDemographics: speech.AudienceDemographics,
		SpeakerBackground:    speech.SpeakerBackground,
		DurationMinutes:      speech.DurationMinutes,
		Tone:                 speech.Tone,
	}
}

// One editor per user per speech. Reopening the editor page replaces the
// entry, which also resets the re-analysis allowance.
var editors = struct {
	sync.Mutex
	m map[string]*draft.Editor
}{m: make(map[string]*draft.Editor)}

func editorKey(userID uint, rawID string) string {
	return fmt.Sprintf("%d:%s", userID, rawID)
}

// openEditor loads a fresh editing session for the given raw id.
func openEditor(c *gin.Context, rawID string) (*draft.Editor, error) {
	record, err := draft.ResolveRecord(rawID)
	if err != nil {
		return nil, err
	}

	e := draft.NewEditor(speechStore{}, gw)

	if record.IsDemo() {
		d, err := demo.Get(record.DemoID())
		if err != nil {
			return nil, err
		}
		e.Load(record, d.Brief, d.Content, d.Status)
	} else {
		speech, err := getSpeechByID(record.PersistedID())
		if err != nil {
			return nil, err
		}
		if speech.UserID != currentUserID(c) {
			return nil, errUnauthorized
		}
		e.Load(record, briefOf(speech), speech.Content, speech.Status)
	}

	editors.Lock()
	editors.m[editorKey(currentUserID(c), rawID)] = e
	editors.Unlock()

	return e, nil
}

// editorFor returns the active editing session, opening one if the page
// was posted to without a prior load.
func editorFor(c *gin.Context, rawID string) (*draft.Editor, error) {
	editors.Lock()
	e := editors.m[editorKey(currentUserID(c), rawID)]
	editors.Unlock()

	if e != nil {
		return e, nil
	}
	return openEditor(c, rawID)
}

var errUnauthorized = errors.New("speech is owned by another user")

func abortSpeechError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errUnauthorized):
		c.AbortWithStatus(http.StatusUnauthorized)
	case errors.Is(err, draft.ErrNotFound):
		c.AbortWithError(http.StatusNotFound, err)
	default:
		c.AbortWithError(http.StatusBadRequest, err)
	}
}

func showIndexPage(c *gin.Context) {
	session := currentSessionUserID(c)

	if session != nil {
		query := c.Query("q")
		filter := c.Query("filter")
		speeches := getAllSpeechesByUserID(*session, query, filter)

		var drafts, completed int
		for s := range speeches {
			if speeches[s].Status == model.StatusCompleted {
				completed++
			} else {
				drafts++
			}
		}

		render(c, gin.H{
			"payload":   speeches,
			"demos":     demo.All(),
			"query":     query,
			"filter":    filter,
			"total":     len(speeches),
			"drafts":    drafts,
			"completed": completed}, "index.html")
	} else {
		showLoginPage(c)
	}
}

// Wizard steps, in order
var wizardSteps = []struct {
	Title       string
	Description string
}{
	{"Topic & Message", "What's your talk about?"},
	{"Your Audience", "Who will be listening?"},
	{"Your Story", "What makes you the right speaker?"},
	{"Duration & Tone", "How should it feel?"},
}

// canProceed mirrors the per-step validation of the creation wizard.
func canProceed(step int, brief draft.Brief) bool {
	switch step {
	case 1:
		return strings.TrimSpace(brief.Title) != "" && strings.TrimSpace(brief.Topic) != ""
	case 2:
		return strings.TrimSpace(brief.AudienceDemographics) != ""
	case 3:
		return strings.TrimSpace(brief.SpeakerBackground) != ""
	case 4:
		return true
	default:
		return false
	}
}

func parseBriefForm(c *gin.Context) draft.Brief {
	duration, err := strconv.Atoi(c.PostForm("duration_minutes"))
	if err != nil || !model.ValidDuration(duration) {
		duration = 15
	}

	tone := c.PostForm("tone")
	if !model.ValidTone(tone) {
		tone = "inspiring"
	}

	return draft.Brief{
		Title:                c.PostForm("title"),
		Topic:                c.PostForm("topic"),
		KeyMessage:           c.PostForm("key_message"),
		AudienceDemographics: c.PostForm("audience_demographics"),
		SpeakerBackground:    c.PostForm("speaker_background"),
		DurationMinutes:      duration,
		Tone:                 tone,
	}
}

func renderCreateStep(c *gin.Context, step int, brief draft.Brief, errorMessage string) {
	data := gin.H{
		"step":        step,
		"stepTitle":   wizardSteps[step-1].Title,
		"stepDesc":    wizardSteps[step-1].Description,
		"brief":       brief,
		"tones":       model.Tones,
		"durations":   model.Durations,
		"isLastStep":  step == len(wizardSteps),
		"isFirstStep": step == 1,
	}
	if errorMessage != "" {
		data["ErrorTitle"] = "Incomplete step"
		data["ErrorMessage"] = errorMessage
	}
	render(c, data, "create-speech.html")
}

func showCreatePage(c *gin.Context) {
	renderCreateStep(c, 1, draft.Brief{DurationMinutes: 15, Tone: "inspiring"}, "")
}

// createSpeech drives the wizard: back/next navigation plus the final
// generate action, which calls the Generation Gateway and persists the
// result as a draft.
func createSpeech(c *gin.Context) {
	brief := parseBriefForm(c)
	step, err := strconv.Atoi(c.PostForm("step"))
	if err != nil || step < 1 || step > len(wizardSteps) {
		step = 1
	}

	switch c.PostForm("action") {
	case "back":
		if step > 1 {
			step--
		}
		renderCreateStep(c, step, brief, "")
		return
	case "next":
		if !canProceed(step, brief) {
			renderCreateStep(c, step, brief, "Please fill in the required fields before continuing")
			return
		}
		if step < len(wizardSteps) {
			step++
		}
		renderCreateStep(c, step, brief, "")
		return
	}

	// Final step: generate and save
	if !brief.Complete() {
		renderCreateStep(c, 1, brief, "Title and topic are required")
		return
	}

	content, err := gw.Generate(c.Request.Context(), brief)
	if err != nil {
		helper.Log.Warnw("speech generation failed", "error", err, "user", currentUserID(c))
		c.HTML(http.StatusBadGateway, "create-speech.html", gin.H{
			"url_base":     helper.GetConfig("URL_BASE"),
			"is_logged_in": true,
			"step":         len(wizardSteps),
			"stepTitle":    wizardSteps[len(wizardSteps)-1].Title,
			"stepDesc":     wizardSteps[len(wizardSteps)-1].Description,
			"brief":        brief,
			"tones":        model.Tones,
			"durations":    model.Durations,
			"isLastStep":   true,
			"ErrorTitle":   "Creation failed",
			"ErrorMessage": err.Error()})
		return
	}

	speech, err := insertSpeech(currentUserID(c), brief, content)
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/speech/edit/%d", speech.ID))
}

func showUploadPage(c *gin.Context) {
	render(c, gin.H{
		"tones":     model.Tones,
		"durations": model.Durations}, "upload-speech.html")
}

// uploadSpeech imports an existing script from a plain-text file. The
// file content is taken verbatim; no structure is parsed.
func uploadSpeech(c *gin.Context) {
	brief := parseBriefForm(c)

	file, err := c.FormFile("content")
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if brief.Title == "" {
		brief.Title = strings.TrimSuffix(file.Filename, ".txt")
	}
	if brief.Topic == "" {
		brief.Topic = brief.Title
	}

	f, err := file.Open()
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	speech, err := insertSpeech(currentUserID(c), brief, string(content))
	if err != nil {
		c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/speech/edit/%d", speech.ID))
}

// renderEditor renders the editor page for the current session state.
func renderEditor(c *gin.Context, e *draft.Editor, rawID string, extra gin.H) {
	brief := e.Brief()
	content := e.Content()

	data := gin.H{
		"id":              rawID,
		"isDemo":          e.Record().IsDemo(),
		"brief":           brief,
		"content":         content,
		"status":          e.Status(),
		"wordCount":       draft.WordCount(content),
		"estimateMinutes": draft.EstimateMinutes(content),
		"reanalysesLeft":  e.ReanalysesLeft(),
	}

	if !e.Record().IsDemo() {
		if analysis, err := getAnalysisBySpeechID(e.Record().PersistedID()); err == nil {
			data["analysis"] = analysis
		}
	}

	for k, v := range extra {
		data[k] = v
	}

	render(c, data, "editor.html")
}

func showEditorPage(c *gin.Context) {
	rawID := c.Param("speech_id")

	e, err := openEditor(c, rawID)
	if err != nil {
		abortSpeechError(c, err)
		return
	}

	renderEditor(c, e, rawID, gin.H{})
}

// saveSpeech applies the submitted edits and runs the reconciliation
// flow: a diverged brief yields the regenerate-or-keep prompt instead of
// persisting.
func saveSpeech(c *gin.Context) {
	rawID := c.Param("speech_id")

	e, err := editorFor(c, rawID)
	if err != nil {
		abortSpeechError(c, err)
		return
	}

	if !e.Record().IsDemo() {
		e.Edit(parseBriefForm(c), c.PostForm("content"))
	}
	markComplete := c.PostForm("mark_complete") == "1"

	outcome, err := e.RequestSave(c.Request.Context(), markComplete)
	if err != nil {
		if errors.Is(err, draft.ErrBusy) {
			renderEditor(c, e, rawID, gin.H{"ErrorTitle": "Busy", "ErrorMessage": "A save or regeneration is already in progress"})
			return
		}
		renderEditor(c, e, rawID, gin.H{"ErrorTitle": "Save failed", "ErrorMessage": err.Error()})
		return
	}

	switch outcome {
	case draft.ReadOnly:
		renderEditor(c, e, rawID, gin.H{"Notice": "Demo speeches are read-only and cannot be saved"})
	case draft.DecisionRequired:
		render(c, gin.H{
			"id":           rawID,
			"brief":        e.Brief(),
			"markComplete": markComplete}, "regenerate-prompt.html")
	default:
		notice := "Changes saved"
		if markComplete {
			notice = "Speech marked as complete!"
		}
		renderEditor(c, e, rawID, gin.H{"Notice": notice})
	}
}

// resolveRegeneration answers the prompt raised by a diverged save.
func resolveRegeneration(c *gin.Context) {
	rawID := c.Param("speech_id")

	e, err := editorFor(c, rawID)
	if err != nil {
		abortSpeechError(c, err)
		return
	}

	regenerate := c.PostForm("regenerate") == "1"
	markComplete := c.PostForm("mark_complete") == "1"

	if err := e.ResolveRegeneration(c.Request.Context(), regenerate, markComplete); err != nil {
		if errors.Is(err, draft.ErrNoPendingDecision) {
			c.Redirect(http.StatusSeeOther, fmt.Sprintf("/speech/edit/%s", rawID))
			return
		}
		helper.Log.Warnw("regeneration failed", "error", err, "speech", rawID)
		// The decision stays pending and no edits are lost
		render(c, gin.H{
			"id":           rawID,
			"brief":        e.Brief(),
			"markComplete": markComplete,
			"ErrorTitle":   "Regeneration failed",
			"ErrorMessage": err.Error()}, "regenerate-prompt.html")
		return
	}

	notice := "Changes saved"
	if regenerate {
		notice = "Speech regenerated and saved"
	}
	renderEditor(c, e, rawID, gin.H{"Notice": notice})
}

// getSpeech fetches a persisted speech from the URL parameter and checks
// ownership. Demo ids are rejected here; callers that support demo
// records go through the editor instead.
func getSpeech(c *gin.Context) *model.Speech {
	record, err := draft.ResolveRecord(c.Param("speech_id"))
	if err != nil || record.IsDemo() {
		c.AbortWithStatus(http.StatusNotFound)
		return nil
	}

	speech, err := getSpeechByID(record.PersistedID())
	if err != nil {
		c.AbortWithError(http.StatusNotFound, err)
		return nil
	}

	if speech.UserID != currentUserID(c) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return nil
	}

	return speech
}

func deleteSpeech(c *gin.Context) {
	speech := getSpeech(c)
	if speech == nil {
		return
	}

	db.Unscoped().Where(&model.Analysis{SpeechID: speech.ID}).Delete(&model.Analysis{})
	db.Unscoped().Delete(speech)

	editors.Lock()
	delete(editors.m, editorKey(currentUserID(c), c.Param("speech_id")))
	editors.Unlock()

	c.Redirect(http.StatusTemporaryRedirect, "/")
}

// speechSubtitles paces a script into timed teleprompter cues, one per
// paragraph, at the average speaking rate.
func speechSubtitles(content string) *astisub.Subtitles {
	subtitles := astisub.NewSubtitles()

	offset := time.Duration(0)
	for _, paragraph := range strings.Split(content, "\n\n") {
		text := strings.TrimSpace(paragraph)
		if text == "" {
			continue
		}

		words := draft.WordCount(text)
		duration := time.Duration(float64(words) / draft.WordsPerMinute * float64(time.Minute))

		item := &astisub.Item{}
		item.StartAt = offset
		item.EndAt = offset + duration
		for _, line := range strings.Split(text, "\n") {
			item.Lines = append(item.Lines, astisub.Line{Items: []astisub.LineItem{{Text: line}}})
		}
		subtitles.Items = append(subtitles.Items, item)

		offset += duration
	}

	return subtitles
}

// getSpeechForExport loads the speech content to export, demo entries
// included.
func getSpeechForExport(c *gin.Context) (string, string) {
	rawID := c.Param("speech_id")

	record, err := draft.ResolveRecord(rawID)
	if err != nil {
		c.AbortWithStatus(http.StatusNotFound)
		return "", ""
	}

	if record.IsDemo() {
		d, err := demo.Get(record.DemoID())
		if err != nil {
			c.AbortWithError(http.StatusNotFound, err)
			return "", ""
		}
		return d.Content, d.Brief.Title
	}

	speech := getSpeech(c)
	if speech == nil {
		return "", ""
	}
	return speech.Content, speech.Title
}

func exportSpeech(c *gin.Context, ext, contentType string, write func(*astisub.Subtitles, io.Writer) error) {
	content, title := getSpeechForExport(c)
	if content == "" {
		if !c.IsAborted() {
			c.AbortWithError(http.StatusBadRequest, errors.New("speech has no content to export"))
		}
		return
	}

	buf := &bytes.Buffer{}
	if err := write(speechSubtitles(content), buf); err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	filename := strings.ReplaceAll(title, " ", "_") + ext

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func getSpeechSRT(c *gin.Context) {
	exportSpeech(c, ".srt", "text/srt", func(s *astisub.Subtitles, w io.Writer) error {
		return s.WriteToSRT(w)
	})
}

func getSpeechWebVTT(c *gin.Context) {
	exportSpeech(c, ".vtt", "text/vtt", func(s *astisub.Subtitles, w io.Writer) error {
		return s.WriteToWebVTT(w)
	})
}

func getSpeechTTML(c *gin.Context) {
	exportSpeech(c, ".ttml", "text/xml", func(s *astisub.Subtitles, w io.Writer) error {
		return s.WriteToTTML(w)
	})
}

// currentSessionUserID returns the logged-in user id or nil.
func currentSessionUserID(c *gin.Context) *uint {
	loggedInInterface, _ := c.Get("is_logged_in")
	if loggedIn, ok := loggedInInterface.(bool); !ok || !loggedIn {
		return nil
	}
	id := currentUserID(c)
	return &id
}

// Return the user's speeches, newest updated first, optionally filtered
// by a search query and a status filter
func getAllSpeechesByUserID(userID uint, query, filter string) []model.Speech {
	var speeches []model.Speech

	tx := db.Where(&model.Speech{UserID: userID}).Order("updated_at desc")
	if filter == model.StatusDraft || filter == model.StatusCompleted {
		tx = tx.Where("status = ?", filter)
	}
	if query != "" {
		pattern := "%" + strings.ToLower(query) + "%"
		tx = tx.Where("lower(title) LIKE ? OR lower(topic) LIKE ?", pattern, pattern)
	}
	tx.Find(&speeches)

	return speeches
}

// Fetch a speech based on the ID supplied
func getSpeechByID(id uint) (*model.Speech, error) {
	var speech model.Speech

	if err := db.First(&speech, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, draft.ErrNotFound
		}
		return nil, err
	}

	return &speech, nil
}

// Create a new speech record with status draft
func insertSpeech(userID uint, brief draft.Brief, content string) (*model.Speech, error) {
	s := model.Speech{
		UserID:               userID,
		Title:                brief.Title,
		Topic:                brief.Topic,
		KeyMessage:           brief.KeyMessage,
		AudienceDemographics: brief.AudienceDemographics,
		SpeakerBackground:    brief.SpeakerBackground,
		DurationMinutes:      brief.DurationMinutes,
		Tone:                 brief.Tone,
		Content:              content,
		Status:               model.StatusDraft,
	}
	err := db.Create(&s).Error
	return &s, err
}
