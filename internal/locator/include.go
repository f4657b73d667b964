package locator

import "strings"

// interactiveWidgets lists the simple class names of widgets a user can
// operate directly. Matching is on the segment after the last dot so the
// androidx/material variants of each widget match alongside the platform
// ones. XCUITest types carry no package prefix and match whole.
var interactiveWidgets = map[string]bool{
	// Android platform and support-library widgets
	"Button":                       true,
	"ImageButton":                  true,
	"CompoundButton":               true,
	"AppCompatButton":              true,
	"AppCompatImageButton":         true,
	"MaterialButton":               true,
	"FloatingActionButton":         true,
	"ExtendedFloatingActionButton": true,
	"EditText":                     true,
	"AppCompatEditText":            true,
	"TextInputEditText":            true,
	"AutoCompleteTextView":         true,
	"MultiAutoCompleteTextView":    true,
	"MaterialAutoCompleteTextView": true,
	"CheckBox":                     true,
	"AppCompatCheckBox":            true,
	"MaterialCheckBox":             true,
	"CheckedTextView":              true,
	"Switch":                       true,
	"SwitchCompat":                 true,
	"SwitchMaterial":               true,
	"MaterialSwitch":               true,
	"ToggleButton":                 true,
	"RadioButton":                  true,
	"AppCompatRadioButton":         true,
	"MaterialRadioButton":          true,
	"Spinner":                      true,
	"AppCompatSpinner":             true,
	"SeekBar":                      true,
	"AppCompatSeekBar":             true,
	"Slider":                       true,
	"RangeSlider":                  true,
	"RatingBar":                    true,
	"NumberPicker":                 true,
	"DatePicker":                   true,
	"TimePicker":                   true,
	"SearchView":                   true,
	"Chip":                         true,

	// XCUITest element types
	"XCUIElementTypeButton":           true,
	"XCUIElementTypeTextField":        true,
	"XCUIElementTypeSecureTextField":  true,
	"XCUIElementTypeTextView":         true,
	"XCUIElementTypeSwitch":           true,
	"XCUIElementTypeSlider":           true,
	"XCUIElementTypeStepper":          true,
	"XCUIElementTypeSegmentedControl": true,
	"XCUIElementTypePicker":           true,
	"XCUIElementTypePickerWheel":      true,
	"XCUIElementTypeDatePicker":       true,
	"XCUIElementTypeSearchField":      true,
	"XCUIElementTypeCheckBox":         true,
	"XCUIElementTypeLink":             true,
	"XCUIElementTypeKey":              true,
}

// layoutContainers lists classes that exist purely to arrange children and
// never carry meaning of their own. They are dropped unless an earlier rule
// (content-desc, clickable, focusable) already claimed them.
var layoutContainers = map[string]bool{
	"ViewGroup":               true,
	"LinearLayout":            true,
	"LinearLayoutCompat":      true,
	"RelativeLayout":          true,
	"FrameLayout":             true,
	"GridLayout":              true,
	"TableLayout":             true,
	"TableRow":                true,
	"AbsoluteLayout":          true,
	"ConstraintLayout":        true,
	"CoordinatorLayout":       true,
	"AppBarLayout":            true,
	"CollapsingToolbarLayout": true,
	"DrawerLayout":            true,
	"SwipeRefreshLayout":      true,
	"ScrollView":              true,
	"HorizontalScrollView":    true,
	"NestedScrollView":        true,
	"ListView":                true,
	"GridView":                true,
	"RecyclerView":            true,
	"ViewPager":               true,
	"ViewPager2":              true,
	"CardView":                true,
	"MaterialCardView":        true,
	"FragmentContainerView":   true,
	"ComposeView":             true,

	"XCUIElementTypeApplication":    true,
	"XCUIElementTypeWindow":         true,
	"XCUIElementTypeOther":          true,
	"XCUIElementTypeGroup":          true,
	"XCUIElementTypeScrollView":     true,
	"XCUIElementTypeTable":          true,
	"XCUIElementTypeCollectionView": true,
	"XCUIElementTypeNavigationBar":  true,
	"XCUIElementTypeTabBar":         true,
	"XCUIElementTypeToolbar":        true,
	"XCUIElementTypeStatusBar":      true,
	"XCUIElementTypeKeyboard":       true,
}

// simpleClassName strips the package prefix from an Android class name.
func simpleClassName(class string) string {
	if i := strings.LastIndex(class, "."); i >= 0 {
		return class[i+1:]
	}
	return class
}

// include decides whether a node belongs in the locator output. Rules apply
// in priority order; the first one that fires wins.
func include(n *node) bool {
	// Never-rendered nodes are invisible no matter what their flags claim.
	if n.Bounds == degenerateBounds {
		return false
	}
	if interactiveWidgets[simpleClassName(n.Class)] {
		return true
	}
	// A labelled container is a real control even when its class is generic.
	if n.ContentDesc != "" {
		return true
	}
	if n.Clickable || n.Focusable {
		return true
	}
	if layoutContainers[simpleClassName(n.Class)] {
		return false
	}
	return n.ResourceID != "" && n.Text != ""
}
