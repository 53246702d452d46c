package leads

// FallbackColor is used for any status or agent without a palette entry.
const FallbackColor = "#999"

// StatusColors maps pipeline stages to chart colors.
var StatusColors = map[Status]string{
	StatusNew:       "#1677FF",
	StatusContacted: "#52C41A",
	StatusQualified: "#FAAD14",
	StatusLost:      "#FF4D4F",
}

// AgentColors maps the agent roster to chart colors.
var AgentColors = map[string]string{
	"Sarah Jenkins":   "#4A90D9",
	"Mike Ross":       "#389E6E",
	"Jessica Pearson": "#9B59B6",
	"Harvey Specter":  "#D4A843",
}

// StatusColor returns the palette color for status or FallbackColor.
func StatusColor(status string) string {
	if color, ok := StatusColors[Status(status)]; ok {
		return color
	}
	return FallbackColor
}

// AgentColor returns the palette color for agent or FallbackColor.
func AgentColor(agent string) string {
	if color, ok := AgentColors[agent]; ok {
		return color
	}
	return FallbackColor
}
