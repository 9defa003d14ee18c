package button

// Variant customises what a button does to its model on each transition.
type Variant interface {
	Kind() string
	OnPress(b *Button)
	OnUnpress(b *Button)
	OnReset(b *Button)
}

// Standard is the plain pedestal button. Only the animations change.
type Standard struct{}

func (Standard) Kind() string      { return "prop_button" }
func (Standard) OnPress(*Button)   {}
func (Standard) OnUnpress(*Button) {}
func (Standard) OnReset(*Button)   {}

// skinSwap lights the model while pressed by moving one skin up.
type skinSwap struct{}

func (skinSwap) OnPress(b *Button)   { b.SetSkin(b.BaseSkin() + 1) }
func (skinSwap) OnUnpress(b *Button) { b.SetSkin(b.BaseSkin()) }
func (skinSwap) OnReset(*Button)     {}

// Portal is the underground button variant.
type Portal struct{ skinSwap }

func (Portal) Kind() string { return "prop_under_button" }

// Floor is the pressure plate. It is pressed and released by a
// proximity.Poller rather than by use.
type Floor struct{ skinSwap }

func (Floor) Kind() string { return "prop_floor_button" }

// VariantFor maps a level classname to its variant.
func VariantFor(classname string) (Variant, bool) {
	switch classname {
	case "prop_button":
		return Standard{}, true
	case "prop_under_button":
		return Portal{}, true
	case "prop_floor_button":
		return Floor{}, true
	default:
		return nil, false
	}
}
