package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/grevocab/api/internal/model"
	"github.com/grevocab/api/internal/session"
)

// ExportHandler renders the favorites list as a downloadable study sheet.
type ExportHandler struct {
	sessions *session.Manager
}

func NewExportHandler(sessions *session.Manager) *ExportHandler {
	return &ExportHandler{sessions: sessions}
}

func (h *ExportHandler) Export(c *gin.Context) {
	sess, ok := clientSession(c, h.sessions)
	if !ok {
		return
	}

	favorites := sess.Favorites()
	format := c.DefaultQuery("format", "json")

	switch format {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="favorites.json"`)
		c.JSON(http.StatusOK, gin.H{"favorites": favorites})
	case "csv":
		h.exportCSV(c, favorites)
	case "md", "markdown":
		h.exportMarkdown(c, favorites)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported format: " + format})
	}
}

func (h *ExportHandler) exportCSV(c *gin.Context, favorites []model.WordProfile) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{"word", "phonetic", "definition", "mnemonic", "mastery", "reviews"})
	for _, f := range favorites {
		mastery, reviews := 0, 0
		if f.Stats != nil {
			mastery = f.Stats.MasteryScore
			reviews = f.Stats.Reviews
		}
		w.Write([]string{
			f.Word,
			f.Phonetic,
			f.Definition,
			f.Mnemonic,
			strconv.Itoa(mastery),
			strconv.Itoa(reviews),
		})
	}
	w.Flush()

	c.Header("Content-Disposition", `attachment; filename="favorites.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) exportMarkdown(c *gin.Context, favorites []model.WordProfile) {
	var buf bytes.Buffer

	buf.WriteString("# Favorite Words\n\n")
	for _, f := range favorites {
		fmt.Fprintf(&buf, "## %s %s\n\n", f.Word, f.Phonetic)
		fmt.Fprintf(&buf, "**%s** %s\n\n", f.PartOfSpeech, f.Definition)
		if f.Mnemonic != "" {
			fmt.Fprintf(&buf, "> %s\n\n", f.Mnemonic)
		}
		if f.GREContext.SentenceEn != "" {
			fmt.Fprintf(&buf, "- %s\n", f.GREContext.SentenceEn)
		}
		if f.GREContext.SentenceCn != "" {
			fmt.Fprintf(&buf, "- %s\n", f.GREContext.SentenceCn)
		}
		buf.WriteString("\n")
	}

	c.Header("Content-Disposition", `attachment; filename="favorites.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", buf.Bytes())
}
