package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/skillman/pkg/core"
	"github.com/arthur-debert/skillman/pkg/resolver"
	"github.com/arthur-debert/skillman/pkg/stats"
	"github.com/arthur-debert/skillman/pkg/synchronizer"
	"github.com/arthur-debert/skillman/pkg/types"
	"github.com/pterm/pterm"
)

const descriptionWidth = 60

// Printer writes command output in one format.
type Printer struct {
	out    io.Writer
	format Format
	styles Styles

	// MarkdownStyle is the glamour style used for skill manifests
	MarkdownStyle string
}

// NewPrinter creates a Printer. FormatAuto is resolved against out.
func NewPrinter(out io.Writer, format Format) *Printer {
	if format == FormatAuto {
		format = FormatText
		if f, ok := out.(*os.File); ok {
			format = DetectFormat(f)
		}
	}
	return &Printer{
		out:    out,
		format: format,
		styles: NewStyles(out, format == FormatTerminal),
	}
}

// Format returns the resolved output format.
func (p *Printer) Format() Format { return p.format }

func (p *Printer) json(v interface{}) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (p *Printer) line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Printer) table(header []string, rows [][]string) error {
	if len(rows) == 0 {
		p.line("%s", p.styles.Muted.Render("(none)"))
		return nil
	}
	data := append([][]string{header}, rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	if p.format != FormatTerminal {
		out = pterm.RemoveColorFromString(out)
	}
	_, err = fmt.Fprintln(p.out, out)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// Message prints a plain line. It is silent in JSON mode.
func (p *Printer) Message(format string, args ...interface{}) {
	if p.format == FormatJSON {
		return
	}
	p.line(format, args...)
}

// Success prints a highlighted confirmation. It is silent in JSON mode.
func (p *Printer) Success(format string, args ...interface{}) {
	if p.format == FormatJSON {
		return
	}
	p.line("%s %s", p.styles.Success.Render("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a warning. It is silent in JSON mode.
func (p *Printer) Warn(format string, args ...interface{}) {
	if p.format == FormatJSON {
		return
	}
	p.line("%s %s", p.styles.Warning.Render("!"), fmt.Sprintf(format, args...))
}

// Error prints err.
func (p *Printer) Error(err error) {
	if p.format == FormatJSON {
		_ = p.json(map[string]string{"error": err.Error()})
		return
	}
	p.line("%s %v", p.styles.Error.Render("✗"), err)
}

// Skills prints the catalog.
func (p *Printer) Skills(skills []types.Skill) error {
	if p.format == FormatJSON {
		return p.json(skills)
	}
	rows := make([][]string, 0, len(skills))
	for _, s := range skills {
		rows = append(rows, []string{
			s.Name,
			p.styles.Status(s.LinkStatusUser),
			s.SourceRepo,
			s.Category,
			truncate(s.Description, descriptionWidth),
		})
	}
	return p.table([]string{"NAME", "USER", "REPO", "CATEGORY", "DESCRIPTION"}, rows)
}

// SkillDetail prints one skill and its manifest.
func (p *Printer) SkillDetail(s types.Skill) error {
	if p.format == FormatJSON {
		return p.json(s)
	}
	p.line("%s", p.styles.Title.Render(s.Name))
	field := func(label, value string) {
		if value != "" {
			p.line("  %s %s", p.styles.Label.Render(label+":"), value)
		}
	}
	field("ID", s.ID)
	field("Version", s.Version)
	field("Source", p.styles.Path.Render(s.SourcePath))
	field("Repository", s.SourceRepo)
	field("Category", s.Category)
	field("Tags", strings.Join(s.Tags, ", "))
	field("Depends on", strings.Join(s.Dependencies, ", "))
	field("User link", p.styles.Status(s.LinkStatusUser))
	var extras []string
	if s.HasScripts {
		extras = append(extras, "scripts")
	}
	if s.HasReferences {
		extras = append(extras, "references")
	}
	field("Includes", strings.Join(extras, ", "))

	if s.RawContent == "" {
		return nil
	}
	p.line("")
	if p.format == FormatTerminal {
		_, err := fmt.Fprint(p.out, RenderMarkdown(s.RawContent, p.MarkdownStyle, 0))
		return err
	}
	_, err := fmt.Fprintln(p.out, s.RawContent)
	return err
}

// Links prints the entries of a skills directory.
func (p *Printer) Links(dir string, links []types.LinkInfo) error {
	if p.format == FormatJSON {
		return p.json(map[string]interface{}{"dir": dir, "links": links})
	}
	p.line("%s", p.styles.Path.Render(dir))
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{l.Name, p.styles.Status(l.Status), l.LinkTarget})
	}
	return p.table([]string{"NAME", "STATUS", "TARGET"}, rows)
}

// Profiles prints profiles with how many of their skills were found.
func (p *Printer) Profiles(profiles []types.Profile, skills []types.Skill) error {
	if p.format == FormatJSON {
		return p.json(profiles)
	}
	rows := make([][]string, 0, len(profiles))
	for _, pr := range profiles {
		preset := ""
		if pr.IsPreset {
			preset = "preset"
		}
		rows = append(rows, []string{
			pr.ID,
			pr.Name,
			fmt.Sprintf("%d of %d found", resolver.FoundCount(pr, skills), len(pr.SkillIDs)),
			preset,
		})
	}
	return p.table([]string{"ID", "NAME", "SKILLS", ""}, rows)
}

// Profile prints one profile, marking references missing from the catalog.
func (p *Printer) Profile(pr types.Profile, skills []types.Skill) error {
	missing := resolver.Missing(pr, skills)
	if p.format == FormatJSON {
		return p.json(map[string]interface{}{"profile": pr, "missing": missing})
	}
	p.line("%s %s", p.styles.Title.Render(pr.Name), p.styles.Muted.Render("("+pr.ID+")"))
	if pr.Description != "" {
		p.line("  %s", pr.Description)
	}
	p.line("  %s %d of %d found", p.styles.Label.Render("Skills:"), resolver.FoundCount(pr, skills), len(pr.SkillIDs))

	isMissing := make(map[string]bool, len(missing))
	for _, m := range missing {
		isMissing[m] = true
	}
	for _, ref := range pr.SkillIDs {
		if isMissing[ref] {
			p.line("    %s %s", ref, p.styles.Warning.Render("not found in repository"))
		} else {
			p.line("    %s", ref)
		}
	}
	return nil
}

// Projects prints the project list.
func (p *Printer) Projects(projects []types.ProjectConfig) error {
	if p.format == FormatJSON {
		return p.json(projects)
	}
	rows := make([][]string, 0, len(projects))
	for _, pr := range projects {
		rows = append(rows, []string{
			pr.ID,
			pr.Name,
			pr.Path,
			strings.Join(pr.ProfileIDs, ", "),
			strings.Join(pr.ExtraSkillIDs, ", "),
		})
	}
	return p.table([]string{"ID", "NAME", "PATH", "PROFILES", "EXTRA SKILLS"}, rows)
}

type outcomeView struct {
	Name   string           `json:"name"`
	Action string           `json:"action"`
	Status types.LinkStatus `json:"status,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func outcomeViews(r *synchronizer.Result) []outcomeView {
	views := make([]outcomeView, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		v := outcomeView{Name: o.Name, Action: string(o.Action), Status: o.Status}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		views = append(views, v)
	}
	return views
}

func (p *Printer) outcomes(r *synchronizer.Result) {
	for _, o := range r.Outcomes {
		verb := "linked"
		if o.Action == synchronizer.ActionUnlink {
			verb = "removed"
		}
		if o.Err != nil {
			p.line("  %s %s %s", p.styles.Error.Render("✗"), o.Name, p.styles.Muted.Render(o.Err.Error()))
			continue
		}
		p.line("  %s %s %s (%s)", p.styles.Success.Render("✓"), verb, o.Name, p.styles.Status(o.Status))
	}
}

// SyncResult prints the outcomes of one apply or sync.
func (p *Printer) SyncResult(r *synchronizer.Result) error {
	if p.format == FormatJSON {
		return p.json(map[string]interface{}{"target": r.TargetDir, "outcomes": outcomeViews(r)})
	}
	p.line("%s", p.styles.Path.Render(r.TargetDir))
	if len(r.Outcomes) == 0 {
		p.line("  %s", p.styles.Muted.Render("nothing to do"))
	}
	p.outcomes(r)
	return nil
}

type projectSyncView struct {
	Project  string        `json:"project"`
	Target   string        `json:"target"`
	Outcomes []outcomeView `json:"outcomes"`
	Error    string        `json:"error,omitempty"`
}

func projectSyncViewOf(ps *core.ProjectSync) projectSyncView {
	v := projectSyncView{Project: ps.Project.ID, Target: ps.TargetDir, Outcomes: []outcomeView{}}
	if ps.Result != nil {
		v.Outcomes = outcomeViews(ps.Result)
	}
	if ps.Err != nil {
		v.Error = ps.Err.Error()
	}
	return v
}

// ProjectSync prints one project sync.
func (p *Printer) ProjectSync(ps *core.ProjectSync) error {
	if p.format == FormatJSON {
		return p.json(projectSyncViewOf(ps))
	}
	p.projectSync(ps)
	return nil
}

func (p *Printer) projectSync(ps *core.ProjectSync) {
	mark := p.styles.Success.Render("✓")
	if !ps.OK() {
		mark = p.styles.Error.Render("✗")
	}
	p.line("%s %s %s", mark, p.styles.Label.Render(ps.Project.Name), p.styles.Path.Render(ps.TargetDir))
	if ps.Result == nil {
		p.line("  %s", p.styles.Muted.Render(ps.Err.Error()))
		return
	}
	p.outcomes(ps.Result)
}

// Cascade prints every project sync of a cascade.
func (p *Printer) Cascade(r *core.CascadeReport) error {
	if p.format == FormatJSON {
		views := make([]projectSyncView, 0, len(r.Projects))
		for _, ps := range r.Projects {
			views = append(views, projectSyncViewOf(ps))
		}
		return p.json(map[string]interface{}{"profile": r.ProfileID, "projects": views})
	}
	if len(r.Projects) == 0 {
		p.line("%s", p.styles.Muted.Render("no projects affected"))
		return nil
	}
	for _, ps := range r.Projects {
		p.projectSync(ps)
	}
	if failed := len(r.Failed()); failed > 0 {
		p.Warn("%d of %d projects had failures", failed, len(r.Projects))
	}
	return nil
}

// Stats prints usage counters with the top n skills and profiles.
func (p *Printer) Stats(s stats.Stats, n int) error {
	if p.format == FormatJSON {
		return p.json(s)
	}
	p.line("%s", p.styles.Title.Render("Usage"))
	p.line("  scans: %d  links created: %d  links removed: %d  broken cleaned: %d",
		s.TotalScans, s.TotalLinksCreated, s.TotalLinksRemoved, s.TotalBrokenCleaned)

	counts := func(title string, list []stats.Count) error {
		p.line("")
		p.line("%s", p.styles.Label.Render(title))
		rows := make([][]string, 0, len(list))
		for _, c := range list {
			rows = append(rows, []string{c.Name, fmt.Sprint(c.Count)})
		}
		return p.table([]string{"NAME", "COUNT"}, rows)
	}
	if err := counts("Most toggled skills", s.TopToggled(n)); err != nil {
		return err
	}
	return counts("Most applied profiles", s.TopProfiles(n))
}

// Remotes prints the configured servers with their connection status.
func (p *Printer) Remotes(servers []types.RemoteServer, status func(id string) types.ConnectionStatus) error {
	if p.format == FormatJSON {
		type view struct {
			types.RemoteServer
			Status types.ConnectionStatus `json:"connection"`
		}
		views := make([]view, 0, len(servers))
		for _, s := range servers {
			views = append(views, view{RemoteServer: s, Status: status(s.ID)})
		}
		return p.json(views)
	}
	rows := make([][]string, 0, len(servers))
	for _, s := range servers {
		rows = append(rows, []string{
			s.ID,
			s.Name,
			s.Username + "@" + s.Address(),
			string(s.Auth.Type),
			s.RemoteRepoPath,
			status(s.ID).String(),
		})
	}
	return p.table([]string{"ID", "NAME", "ADDRESS", "AUTH", "REPO", "STATUS"}, rows)
}
