package fanout

import (
	"fmt"
	"strings"

	"artbot/internal/trends"
)

func motivationMessage(motivation string, art *trends.Entry) string {
	var b strings.Builder
	b.WriteString("🌅 *Good morning!*\n\n")
	b.WriteString(motivation)
	if art != nil {
		fmt.Fprintf(&b, "\n\n🎨 *Art of the day:*\n%s — %s", art.Title, art.Author)
		if art.URL != "" {
			fmt.Fprintf(&b, "\n[View](%s)", art.URL)
		}
	}
	return b.String()
}

func ideaMessage(idea string) string {
	return fmt.Sprintf("💡 *Project idea of the day:*\n\n%s\n\n🚀 Start today!", idea)
}

func trendsMessage(art, music []trends.Entry) string {
	var b strings.Builder
	b.WriteString("🔥 *TRENDING TODAY*\n\n")
	if len(art) > 0 {
		b.WriteString("🎨 *Top ArtStation:*\n")
		for i, e := range art {
			fmt.Fprintf(&b, "%d. %s — %s\n", i+1, e.Title, e.Author)
		}
		b.WriteString("\n")
	}
	if len(music) > 0 {
		b.WriteString("🎵 *Top tracks:*\n")
		for i, e := range music {
			fmt.Fprintf(&b, "%d. %s — %s\n", i+1, e.Title, e.Author)
		}
	}
	b.WriteString("\n💡 Full digest: /trends")
	return b.String()
}

func jobsMessage() string {
	return `💼 *Jobs & freelance*

🔍 *Where to look:*
• ArtStation Jobs
• Upwork — 3D Modeling
• Freelancer
• Fiverr
• LinkedIn Jobs

💡 *Tip of the day:*
Refresh your portfolio with recent work to land better offers!

🔗 [ArtStation Jobs](https://www.artstation.com/jobs)`
}

func assetsMessage() string {
	return `🎁 *Top assets this week*

🆓 *Free resources:*
• Quixel Megascans — new materials
• Poly Haven — HDRIs and textures
• BlenderKit — 3D models
• Substance Source — materials

💎 *Paid must-haves:*
• Gumroad — indie assets
• ArtStation Marketplace
• CGTrader

📚 Check your libraries for updates!`
}

// reminderTexts rotate every two hours through the working day so
// consecutive reminders differ.
var reminderTexts = []string{
	"💧 Drink some water!",
	"🧘 Time to stretch! Stand up for two minutes",
	"💾 Don't forget to back up your project!",
	"👀 Rest your eyes. Look into the distance for 20 seconds",
	"☕ Time for a short break",
}

func reminderMessage(hour int) string {
	text := reminderTexts[(hour/2)%len(reminderTexts)]
	return fmt.Sprintf("⏰ *Reminder*\n\n%s\n\nYour health matters more than deadlines! 💪", text)
}
