package stamp

// presets are the stamps shipped with the application.
var presets = []Asset{
	{
		ID:            DefaultStampID,
		DisplayName:   "ADS UX Logo",
		ImageRef:      "https://picsum.photos/seed/adsuxdefaultstamp/100/100",
		AltText:       "ADS UX Default Stamp",
		DefaultWidth:  80,
		DefaultHeight: 80,
	},
	{
		ID:            "smiley-face",
		DisplayName:   "Smiley Face",
		ImageRef:      "https://picsum.photos/seed/smiley/100/100",
		AltText:       "Smiley Face Stamp",
		DefaultWidth:  80,
		DefaultHeight: 80,
	},
	{
		ID:            "star",
		DisplayName:   "Star",
		ImageRef:      "https://picsum.photos/seed/starshine/100/100",
		AltText:       "Star Stamp",
		DefaultWidth:  70,
		DefaultHeight: 70,
	},
	{
		ID:            "heart",
		DisplayName:   "Heart",
		ImageRef:      "https://picsum.photos/seed/lovelyheart/100/100",
		AltText:       "Heart Stamp",
		DefaultWidth:  75,
		DefaultHeight: 70,
	},
	{
		ID:            "cool-shades",
		DisplayName:   "Cool Shades",
		ImageRef:      "https://picsum.photos/seed/coolshades/120/80",
		AltText:       "Cool Shades Stamp",
		DefaultWidth:  100,
		DefaultHeight: 60,
	},
	{
		ID:            "party-hat",
		DisplayName:   "Party Hat",
		ImageRef:      "https://picsum.photos/seed/partyhat/100/120",
		AltText:       "Party Hat Stamp",
		DefaultWidth:  60,
		DefaultHeight: 80,
	},
}

// Builtin returns the catalog of shipped presets.
func Builtin() *Catalog {
	c, err := NewCatalog(presets)
	if err != nil {
		panic("stamp: invalid built-in presets: " + err.Error())
	}
	return c
}
