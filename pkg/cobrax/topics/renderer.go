package topics

// Renderer formats topic content for display.
type Renderer interface {
	// Render takes raw content and the topic file's extension.
	Render(content string, ext string) string
}

// PlainRenderer returns content unchanged.
type PlainRenderer struct{}

func (r PlainRenderer) Render(content string, ext string) string {
	return content
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(content string, ext string) string

func (f RenderFunc) Render(content string, ext string) string {
	return f(content, ext)
}
