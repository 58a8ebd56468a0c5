// Package topics adds help topics read from files to a Cobra application.
// "help <topic>" renders a topic, "help topics" lists them and every other
// argument falls back to the command help.
package topics

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Manager holds the topics of one application.
type Manager struct {
	topics     map[string]*Topic
	extensions []string
	renderer   Renderer
}

// Topic is one help file.
type Topic struct {
	Name    string
	Ext     string
	Content string
}

// Options configures a Manager.
type Options struct {
	// Extensions lists the topic file extensions, [".txt", ".md"] when empty
	Extensions []string

	// Renderer formats topics, PlainRenderer when nil
	Renderer Renderer
}

// Load reads every topic file below root in fsys.
func Load(fsys fs.FS, root string, opts Options) (*Manager, error) {
	m := &Manager{
		topics:     make(map[string]*Topic),
		extensions: opts.Extensions,
		renderer:   opts.Renderer,
	}
	if len(m.extensions) == 0 {
		m.extensions = []string{".txt", ".md"}
	}
	if m.renderer == nil {
		m.renderer = PlainRenderer{}
	}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !m.supported(path.Ext(p)) {
			return nil
		}
		content, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		ext := path.Ext(p)
		name := strings.TrimSuffix(path.Base(p), ext)
		m.topics[name] = &Topic{Name: name, Ext: ext, Content: string(content)}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load help topics: %w", err)
	}
	return m, nil
}

func (m *Manager) supported(ext string) bool {
	for _, e := range m.extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Get returns a topic by name. A leading "--" is ignored so flags can have
// topics named option-<flag>.
func (m *Manager) Get(name string) (*Topic, bool) {
	name = strings.TrimLeft(name, "-")
	if t, ok := m.topics[name]; ok {
		return t, true
	}
	t, ok := m.topics["option-"+name]
	return t, ok
}

// Names returns every topic name, sorted.
func (m *Manager) Names() []string {
	names := make([]string, 0, len(m.topics))
	for name := range m.topics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render writes a topic through the renderer.
func (m *Manager) Render(w io.Writer, t *Topic) {
	fmt.Fprint(w, m.renderer.Render(t.Content, t.Ext))
}

func (m *Manager) list(w io.Writer, app string) {
	names := m.Names()
	if len(names) == 0 {
		fmt.Fprintln(w, "No help topics available.")
		return
	}
	var options, general []string
	for _, name := range names {
		if opt, ok := strings.CutPrefix(name, "option-"); ok {
			options = append(options, "--"+opt)
		} else {
			general = append(general, name)
		}
	}
	fmt.Fprintln(w, "Available help topics:")
	for _, group := range []struct {
		title string
		names []string
	}{{"General topics:", general}, {"Option topics:", options}} {
		if len(group.names) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", group.title)
		for _, name := range group.names {
			fmt.Fprintf(w, "  %s\n", name)
		}
	}
	fmt.Fprintf(w, "\nUse '%s help <topic>' to read about a specific topic.\n", app)
}

// Install replaces root's help command with one that also serves topics.
func (m *Manager) Install(root *cobra.Command) {
	commandHelp := root.HelpFunc()

	helpCmd := &cobra.Command{
		Use:   "help [command or topic]",
		Short: "Help about any command or topic",
		Long: fmt.Sprintf(`Help provides help for any command or topic.

To see all available help topics:
  %s help topics`, root.Name()),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			completions := []string{"topics"}
			for _, c := range root.Commands() {
				if !c.Hidden {
					completions = append(completions, c.Name())
				}
			}
			return append(completions, m.Names()...), cobra.ShellCompDirectiveNoFileComp
		},
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				commandHelp(root, args)
				return
			}
			if args[0] == "topics" {
				m.list(out, root.Name())
				return
			}
			if t, ok := m.Get(args[0]); ok {
				m.Render(out, t)
				return
			}
			target, _, err := root.Find(args)
			if err != nil || target == nil {
				target = root
			}
			commandHelp(target, args)
		},
	}

	for _, c := range root.Commands() {
		if c.Name() == "help" {
			root.RemoveCommand(c)
			break
		}
	}
	root.SetHelpCommand(helpCmd)
}
