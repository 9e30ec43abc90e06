package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v2.1/gl"
)

// ShaderError carries the full diagnostic context for a compile or link
// failure: the offending source and the driver's info log.
type ShaderError struct {
	Stage  string // "vertex", "fragment" or "link"
	Source string
	Log    string
}

func (e *ShaderError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("shader %s error: %s", e.Stage, e.Log)
	}
	return fmt.Sprintf("shader %s error:\nsource:\n%s\nlog:\n%s", e.Stage, e.Source, e.Log)
}

// Client is the per-primitive draw client a shader dispatches to. batch.Client
// implements it.
type Client interface {
	DoTasks(layer int)
	Rebind()
}

// Shader is a linked program assembled from vertex and fragment source
// fragments, plus the attribute/uniform location tables and the registry of
// clients drawing through it.
type Shader struct {
	ctx *Context

	vertexProgs   []string
	fragmentProgs []string

	program  uint32
	vshaders []uint32
	fshaders []uint32

	arrayNames   []string
	uniformNames []string

	// ArrayLocs and UniformLocs map names parsed from the source to driver
	// locations; -1 means the compiler eliminated the variable.
	ArrayLocs   map[string]int32
	UniformLocs map[string]int32

	clients      []Client // insertion order; also the per-layer draw order
	clientLayers map[int][]Client
}

// NewShader compiles and links the given source fragments into a program.
// Attribute and uniform names are parsed out of the combined source so
// locations can be resolved without callers declaring them twice.
func NewShader(ctx *Context, vertexProgs, fragmentProgs []string) (*Shader, error) {
	s := &Shader{
		ctx:           ctx,
		vertexProgs:   vertexProgs,
		fragmentProgs: fragmentProgs,
		clientLayers:  map[int][]Client{},
	}
	full := strings.Join(vertexProgs, "\n") + "\n" + strings.Join(fragmentProgs, "\n")
	s.arrayNames = parseDecls(full, "attribute")
	s.uniformNames = parseDecls(full, "uniform")
	if err := s.setup(); err != nil {
		return nil, err
	}
	ctx.AddShader(s)
	return s, nil
}

// Context returns the GL context this shader was created on.
func (s *Shader) Context() *Context { return s.ctx }

// AddClient registers a draw client. Clients are visited in registration
// order, which fixes the per-layer draw order.
func (s *Shader) AddClient(c Client) {
	s.clients = append(s.clients, c)
}

// AddClientLayer allows a client to draw on a layer.
func (s *Shader) AddClientLayer(c Client, layer int) {
	for _, existing := range s.clientLayers[layer] {
		if existing == c {
			return
		}
	}
	s.clientLayers[layer] = append(s.clientLayers[layer], c)
}

// RemoveClientLayer stops a client drawing on a layer.
func (s *Shader) RemoveClientLayer(c Client, layer int) {
	list := s.clientLayers[layer]
	for i, existing := range list {
		if existing == c {
			s.clientLayers[layer] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// DoTasks draws everything this shader's clients have on the given layer.
func (s *Shader) DoTasks(layer int) {
	clients := s.clientLayers[layer]
	if len(clients) == 0 {
		return
	}
	s.ctx.UseProgram(s)
	for _, c := range clients {
		c.DoTasks(layer)
	}
}

func (s *Shader) setup() error {
	s.vshaders = s.vshaders[:0]
	s.fshaders = s.fshaders[:0]
	for _, src := range s.vertexProgs {
		sh, err := s.ctx.getShader(src, gl.VERTEX_SHADER)
		if err != nil {
			return err
		}
		s.vshaders = append(s.vshaders, sh)
	}
	for _, src := range s.fragmentProgs {
		sh, err := s.ctx.getShader(src, gl.FRAGMENT_SHADER)
		if err != nil {
			return err
		}
		s.fshaders = append(s.fshaders, sh)
	}

	s.program = gl.CreateProgram()
	for _, sh := range s.vshaders {
		gl.AttachShader(s.program, sh)
	}
	for _, sh := range s.fshaders {
		gl.AttachShader(s.program, sh)
	}
	gl.LinkProgram(s.program)

	var status int32
	gl.GetProgramiv(s.program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(s.program, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetProgramInfoLog(s.program, logLen, nil, gl.Str(infoLog))
		return &ShaderError{Stage: "link", Log: strings.TrimRight(infoLog, "\x00")}
	}

	s.ctx.UseProgram(s)
	s.ArrayLocs = make(map[string]int32, len(s.arrayNames))
	for _, name := range s.arrayNames {
		s.ArrayLocs[name] = gl.GetAttribLocation(s.program, gl.Str(name+"\x00"))
	}
	s.UniformLocs = make(map[string]int32, len(s.uniformNames))
	for _, name := range s.uniformNames {
		s.UniformLocs[name] = gl.GetUniformLocation(s.program, gl.Str(name+"\x00"))
	}
	return nil
}

// rebind relinks the program after a context loss and cascades to clients.
func (s *Shader) rebind() error {
	gl.DeleteProgram(s.program)
	if err := s.setup(); err != nil {
		return err
	}
	for _, c := range s.clients {
		c.Rebind()
	}
	return nil
}

func compileShader(source string, stage uint32) (uint32, error) {
	sh := gl.CreateShader(stage)
	csrc, free := gl.Strs(source + "\x00")
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
	gl.CompileShader(sh)

	var status int32
	gl.GetShaderiv(sh, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &logLen)
		infoLog := strings.Repeat("\x00", int(logLen)+1)
		gl.GetShaderInfoLog(sh, logLen, nil, gl.Str(infoLog))
		stageName := "vertex"
		if stage == gl.FRAGMENT_SHADER {
			stageName = "fragment"
		}
		return 0, &ShaderError{
			Stage:  stageName,
			Source: source,
			Log:    strings.TrimRight(infoLog, "\x00"),
		}
	}
	return sh, nil
}

// parseDecls extracts declared names from GLSL source lines of the form
// "<keyword> <type> <name>[...];".
func parseDecls(source, keyword string) []string {
	seen := map[string]bool{}
	var names []string
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, keyword+" ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		name := fields[2]
		name = strings.TrimRight(name, ";")
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}
