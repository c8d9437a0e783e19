// builder.go - fluent configuration builder over Cipher.
package atomcrypte

// Builder assembles a Config fluently and produces a Cipher.
type Builder struct {
	cfg Config
}

// NewBuilder starts from DefaultConfig.
func NewBuilder() *Builder {
	return &Builder{cfg: DefaultConfig()}
}

func (b *Builder) WithRounds(rounds int) *Builder {
	b.cfg.Rounds = rounds
	return b
}

func (b *Builder) WithDevice(device Device) *Builder {
	b.cfg.Device = device
	return b
}

func (b *Builder) WithSboxMode(mode SboxMode) *Builder {
	b.cfg.Sbox = mode
	return b
}

func (b *Builder) WithThreadNum(n int) *Builder {
	b.cfg.ThreadNum = n
	return b
}

func (b *Builder) WithGFPoly(poly GFPoly) *Builder {
	b.cfg.GFPoly = poly
	return b
}

func (b *Builder) WithArgon2Params(params Argon2Params) *Builder {
	b.cfg.Argon2 = params
	return b
}

// Build constructs a Cipher from the accumulated config. New performs
// the normalization, so an out-of-range Rounds is corrected exactly
// once.
func (b *Builder) Build() (*Cipher, error) {
	return New(b.cfg)
}
