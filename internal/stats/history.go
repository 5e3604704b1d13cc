// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/vocaquiz/vocaquiz/internal/model"
)

const terminalWidthBackup = 80

// RenderHistory prints recent sessions newest-first: an aggregate
// block, a per-session table, and a score trend sparkline sized to
// the terminal.
func RenderHistory(w io.Writer, records []model.SessionRecord, mastered int) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}

	var totalScore, bestScore, totalMistakes int
	for _, rec := range records {
		totalScore += rec.ScorePercentage
		totalMistakes += rec.MistakeCount
		if rec.ScorePercentage > bestScore {
			bestScore = rec.ScorePercentage
		}
	}
	count := len(records)

	if _, err := fmt.Fprintln(w, "Recent Sessions"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Sessions: %d\n", count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Avg Score: %d%%\n", totalScore/count); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Best Score: %d%%\n", bestScore); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Mistakes: %d\n", totalMistakes); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Mastered Words: %d\n", mastered); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}

	headers := []string{"Date", "Score", "Correct", "Time", "Mistakes", "Range"}
	rows := make([][]string, 0, count)
	for _, rec := range records {
		rows = append(rows, []string{
			rec.CompletedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%d%%", rec.ScorePercentage),
			fmt.Sprintf("%d/%d", rec.CorrectCount, rec.TotalQuestions),
			formatElapsed(rec.ElapsedSeconds),
			fmt.Sprintf("%d", rec.MistakeCount),
			fmt.Sprintf("%d-%d", rec.RangeStart, rec.RangeEnd),
		})
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if count > 1 {
		// Oldest to newest, so the trend reads left to right.
		scores := make([]float64, count)
		for i, rec := range records {
			scores[count-1-i] = float64(rec.ScorePercentage)
		}
		spark := Sparkline(scores)
		if width := terminalWidth(); len(spark) > width {
			spark = spark[len(spark)-width:]
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "Score trend: %s\n", spark); err != nil {
			return err
		}
	}
	return nil
}

func formatElapsed(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
