// Package taskparser deterministically extracts structured Task
// records from loosely-formatted markdown produced by an LLM, per the
// @@@task block grammar.
package taskparser

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/routa-core/routa/internal/store"
)

// blockRe finds each @@@task ... @@@ occurrence with a greedy-shortest,
// dot-matches-all match.
var blockRe = regexp.MustCompile(`(?s)@@@task\s*\n(.*?)\n@@@`)

type sectionAlias struct {
	canonical string
	aliases   []string
	isList    bool
}

var sectionAliases = []sectionAlias{
	{canonical: "Objective", aliases: []string{"Objective", "目标", "Goal", "目的"}, isList: false},
	{canonical: "Scope", aliases: []string{"Scope", "范围", "作用域"}, isList: true},
	{canonical: "Definition of Done", aliases: []string{
		"Definition of Done", "完成标准", "验收标准", "Acceptance Criteria", "Done Criteria", "完成条件",
	}, isList: true},
	{canonical: "Verification", aliases: []string{"Verification", "验证", "Verify", "验证方法", "测试验证"}, isList: true},
}

// Parse extracts an ordered list of Task records from free-form text.
// Parser errors never abort; malformed input simply yields fewer or
// zero tasks.
func Parse(text, workspaceID string) []*store.Task {
	var tasks []*store.Task
	for _, m := range blockRe.FindAllStringSubmatch(text, -1) {
		body := m[1]
		for _, sub := range splitSubBlocks(body) {
			tasks = append(tasks, buildTask(sub, workspaceID))
		}
	}
	return tasks
}

// splitSubBlocks splits a block into sub-blocks at every line
// beginning with "# " that is not inside a fenced code block. A block
// with zero or one such header yields one sub-block; two or more
// yield one sub-block per header, starting at each header line.
func splitSubBlocks(body string) []string {
	lines := strings.Split(body, "\n")
	headerIdx := make([]int, 0)
	inFence := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(line, "# ") {
			headerIdx = append(headerIdx, i)
		}
	}
	if len(headerIdx) <= 1 {
		return []string{body}
	}
	subs := make([]string, 0, len(headerIdx))
	for i, start := range headerIdx {
		end := len(lines)
		if i+1 < len(headerIdx) {
			end = headerIdx[i+1]
		}
		subs = append(subs, strings.Join(lines[start:end], "\n"))
	}
	return subs
}

func buildTask(sub, workspaceID string) *store.Task {
	lines := strings.Split(sub, "\n")

	title := "Untitled Task"
	inFence := false
	titleFound := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if !titleFound && strings.HasPrefix(line, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			titleFound = true
			break
		}
	}

	sections := extractSections(lines)

	now := time.Now()
	task := &store.Task{
		ID:          uuid.NewString(),
		Title:       title,
		WorkspaceID: workspaceID,
		Status:      store.TaskPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for canonical, content := range sections {
		switch canonical {
		case "Objective":
			task.Objective = strings.TrimSpace(content)
		case "Scope":
			task.Scope = listItems(content)
		case "Definition of Done":
			task.AcceptanceCriteria = listItems(content)
		case "Verification":
			task.VerificationCommands = listItems(content)
		}
	}
	return task
}

// extractSections locates every "## <alias>" header (outside fenced
// code) and captures the body up to the next "##" header of any kind
// (recognized or not) or the end of the sub-block, keyed by canonical
// section name. An unrecognized "##" header still closes the prior
// recognized section's body; it just isn't itself captured.
func extractSections(lines []string) map[string]string {
	result := make(map[string]string)
	inFence := false

	type found struct {
		canonical string
		ok        bool
		start     int
	}
	var headers []found

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if !strings.HasPrefix(trimmed, "## ") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
		canonical, ok := resolveAlias(name)
		headers = append(headers, found{canonical: canonical, ok: ok, start: i})
	}

	for i, h := range headers {
		if !h.ok {
			continue
		}
		end := len(lines)
		if i+1 < len(headers) {
			end = headers[i+1].start
		}
		body := lines[h.start+1 : end]
		text := strings.Join(body, "\n")
		if _, exists := result[h.canonical]; !exists {
			result[h.canonical] = text
		}
	}
	return result
}

func resolveAlias(name string) (string, bool) {
	for _, sa := range sectionAliases {
		for _, alias := range sa.aliases {
			if alias == name {
				return sa.canonical, true
			}
		}
	}
	return "", false
}

// listItems keeps only lines beginning with "-", with the marker and
// surrounding whitespace removed.
func listItems(content string) []string {
	var items []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		item := strings.TrimSpace(strings.TrimPrefix(trimmed, "-"))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Format round-trips a Task back to the @@@task grammar, used to
// verify parse idempotence.
func Format(t *store.Task) string {
	var b strings.Builder
	b.WriteString("@@@task\n")
	b.WriteString("# " + t.Title + "\n")
	b.WriteString("## Objective\n" + t.Objective + "\n")
	b.WriteString("## Scope\n")
	for _, s := range t.Scope {
		b.WriteString("- " + s + "\n")
	}
	b.WriteString("## Definition of Done\n")
	for _, s := range t.AcceptanceCriteria {
		b.WriteString("- " + s + "\n")
	}
	b.WriteString("## Verification\n")
	for _, s := range t.VerificationCommands {
		b.WriteString("- " + s + "\n")
	}
	b.WriteString("@@@")
	return b.String()
}
