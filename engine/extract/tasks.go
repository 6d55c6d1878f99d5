package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/donizo/pricing-engine/engine/domain"
)

var (
	areaRe = regexp.MustCompile(`(\d+)\s?m[²2]`)
	cityRe = regexp.MustCompile(`(marseille|paris|lyon)`)
)

// taskRule maps a transcript trigger to a canonical task. withArea attaches
// the extracted surface area to the task.
type taskRule struct {
	triggers []string
	taskName string
	withArea bool
}

// taskRules are evaluated in a fixed order so task lists are deterministic.
var taskRules = []taskRule{
	{triggers: []string{"tile"}, taskName: "Floor Tiling (ceramic)", withArea: true},
	{triggers: []string{"paint", "repaint"}, taskName: "Repaint Walls"},
	{triggers: []string{"plumb"}, taskName: "Shower Plumbing (redo)"},
	{triggers: []string{"toilet"}, taskName: "Replace Toilet"},
	{triggers: []string{"vanity"}, taskName: "Install Vanity"},
	{triggers: []string{"remove old tile", "remove the old tiles"}, taskName: "Demolition & Disposal"},
}

// SplitTasks reduces a transcript to its labor view: zone, city, surface
// area, budget flag, and the canonical task list.
func SplitTasks(text string) domain.TaskPlan {
	lower := strings.ToLower(text)

	zone := "general"
	if strings.Contains(lower, "bathroom") {
		zone = "bathroom"
	}

	var area *float64
	if m := areaRe.FindStringSubmatch(lower); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			area = &v
		}
	}

	var city string
	if m := cityRe.FindStringSubmatch(lower); m != nil {
		city = strings.ToUpper(m[1][:1]) + m[1][1:]
	}

	var tasks []domain.Task
	for _, rule := range taskRules {
		for _, trig := range rule.triggers {
			if strings.Contains(lower, trig) {
				t := domain.Task{TaskName: rule.taskName}
				if rule.withArea {
					t.AreaM2 = area
				}
				tasks = append(tasks, t)
				break
			}
		}
	}

	return domain.TaskPlan{
		Zone:       zone,
		City:       city,
		BudgetFlag: strings.Contains(lower, "budget"),
		Tasks:      tasks,
		AreaM2:     area,
	}
}
