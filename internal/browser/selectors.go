package browser

// DocC navigator markup.
const (
	navigatorSelector  = "nav.navigator"
	scrollerSelector   = ".vue-recycle-scroller"
	cardBodySelector   = "nav.navigator .card-body"
	cardSelector       = ".navigator-card-item"
	chevronSelector    = "svg.inline-chevron-right-icon"
	titleSelector      = ".highlight"
	headerSelector     = "h3"
	headWrapper        = ".head-wrapper"
	technologySelector = ".technology-title"
	nestingAttr        = "data-nesting-index"
	groupClass         = "is-group"
)

// allTechnologies is the navigator's back button; expanding it leaves the
// current technology.
const allTechnologies = "All Technologies"
