package glbackend

// Uniform pairs a name with a closure that pushes the current value to a
// resolved location. Locations differ per shader, so resolution and
// staleness are tracked per shader; Invalidate marks the value dirty
// everywhere it is bound.
type Uniform struct {
	name     string
	apply    func(loc int32)
	bindings map[*Shader]*uniformBinding
}

type uniformBinding struct {
	loc     int32
	stale   bool
	program uint32 // the linked program the location was resolved against
}

// NewUniform creates a uniform. apply is called with the resolved location
// whenever the value needs (re)sending; it should capture the live data.
func NewUniform(name string, apply func(loc int32)) *Uniform {
	return &Uniform{
		name:     name,
		apply:    apply,
		bindings: map[*Shader]*uniformBinding{},
	}
}

// Name returns the uniform's GLSL name.
func (u *Uniform) Name() string { return u.name }

// Invalidate marks the uniform dirty on every shader it has been bound to,
// forcing a re-send on the next bind.
func (u *Uniform) Invalidate() {
	for _, b := range u.bindings {
		b.stale = true
	}
}

func (u *Uniform) bind(s *Shader, force bool) {
	b := u.bindings[s]
	if b == nil || b.program != s.program {
		// first bind, or the shader was relinked after a context loss
		loc := int32(-1)
		if l, ok := s.UniformLocs[u.name]; ok {
			loc = l
		}
		b = &uniformBinding{loc: loc, stale: true, program: s.program}
		u.bindings[s] = b
	}
	if !b.stale && !force {
		return
	}
	if b.loc != -1 {
		u.apply(b.loc)
	}
	b.stale = false
}

// UniformStore is the set of uniforms one draw client binds before its draw
// calls. When the store bound to a shader changes, every uniform is re-sent;
// otherwise only stale ones are.
type UniformStore struct {
	uniforms []*Uniform
}

// NewUniformStore creates a store holding the given uniforms.
func NewUniformStore(uniforms ...*Uniform) *UniformStore {
	return &UniformStore{uniforms: uniforms}
}

// Add appends uniforms to the store.
func (st *UniformStore) Add(uniforms ...*Uniform) {
	st.uniforms = append(st.uniforms, uniforms...)
}

// Bind sends the store's uniforms for the currently bound shader.
func (st *UniformStore) Bind(ctx *Context) {
	s := ctx.BoundShader()
	if s == nil {
		return
	}
	force := ctx.boundStores[s] != st
	ctx.boundStores[s] = st
	for _, u := range st.uniforms {
		u.bind(s, force)
	}
}
