package bot

import (
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"
	"unicode"

	"placeminder/internal/model"
	"placeminder/internal/service"
)

const helpText = `<b>Commands</b>
/reminders - list your reminders
/categories - list place categories
/add &lt;category&gt; &lt;title&gt; - add a reminder
/done &lt;id&gt; - mark a reminder completed
/delete &lt;id&gt; - delete a reminder
/radius &lt;meters&gt; - change the search radius

Share your location to see which reminders you can take care of nearby.`

// match pairs a reminder with the nearest venue of its category.
type match struct {
	Reminder model.Reminder
	Venue    service.MatchedVenue
}

// nearestPerReminder picks the closest venue for every matched reminder.
// Venues in res are already ordered nearest first.
func nearestPerReminder(res *service.Resolution) []match {
	nearest := make(map[uint]service.MatchedVenue)
	for _, v := range res.Venues {
		if _, ok := nearest[v.CategoryID]; !ok {
			nearest[v.CategoryID] = v
		}
	}

	out := make([]match, 0, len(res.Reminders))
	for _, r := range res.Reminders {
		v, ok := nearest[r.CategoryID]
		if !ok {
			continue
		}
		out = append(out, match{Reminder: r, Venue: v})
	}
	return out
}

func formatMatches(matches []match) string {
	var b strings.Builder
	b.WriteString("📍 <b>Nearby</b>\n")
	for _, m := range matches {
		b.WriteString(fmt.Sprintf("• <b>#%d</b> %s\n", m.Reminder.ID, escape(normalizeTitle(m.Reminder.Title))))
		b.WriteString(fmt.Sprintf("   %s, %s", escape(m.Venue.Name), formatDistance(m.Venue.Distance)))
		if m.Venue.Address != "" {
			b.WriteString(fmt.Sprintf(" · %s", escape(m.Venue.Address)))
		}
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String())
}

func formatReminderList(reminders []model.Reminder) string {
	var b strings.Builder
	b.WriteString("📋 <b>Reminders</b>\n")
	for _, r := range reminders {
		icon := "🟢"
		if r.Completed {
			icon = "✔️"
		}
		b.WriteString(fmt.Sprintf("%s <b>#%d</b> %s", icon, r.ID, escape(normalizeTitle(r.Title))))
		if r.Category.Name != "" {
			b.WriteString(fmt.Sprintf(" <i>(%s)</i>", escape(r.Category.Name)))
		}
		b.WriteByte('\n')
		if r.Description != "" {
			b.WriteString(fmt.Sprintf("   📝 %s\n", escape(r.Description)))
		}
	}
	return strings.TrimSpace(b.String())
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%d m", int(meters+0.5))
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

// splitAddArgs separates "/add" arguments into a category name and a title.
// Known category names are matched case-insensitively, longest first, so
// multi-word names work; otherwise the first word is the category.
func splitAddArgs(args string, categories []string) (string, string, bool) {
	args = strings.TrimSpace(args)
	lower := strings.ToLower(args)

	best := ""
	for _, name := range categories {
		prefix := strings.ToLower(name) + " "
		if strings.HasPrefix(lower, prefix) && len(name) > len(best) {
			best = name
		}
	}
	if best != "" {
		title := strings.TrimSpace(args[len(best):])
		return best, title, title != ""
	}

	fields := strings.Fields(args)
	if len(fields) < 2 {
		return "", "", false
	}
	return fields[0], strings.TrimSpace(strings.TrimPrefix(args, fields[0])), true
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.New("id must be positive")
	}
	return uint(id), nil
}

func shortTitle(title string, maxLen int) string {
	clean := normalizeTitle(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

func normalizeTitle(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	runes := []rune(value)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func escape(s string) string {
	return html.EscapeString(s)
}
