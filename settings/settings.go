// Package settings declares the launcher's settings stores and assembles them
// into a registry.
package settings

import (
	"context"
	"fmt"

	"github.com/CreativeUnicorns/launcherprefs"
	"github.com/CreativeUnicorns/launcherprefs/gesture"
	"github.com/CreativeUnicorns/launcherprefs/widgets"
)

// Store backup identifiers.
const (
	Debug       launcherprefs.StoreID = "Debug"
	Drawer      launcherprefs.StoreID = "Drawer"
	Wallpaper   launcherprefs.StoreID = "Wallpaper"
	Private     launcherprefs.StoreID = "Private"
	ColorModes  launcherprefs.StoreID = "ColorModes"
	Backup      launcherprefs.StoreID = "Backup"
	Widgets     launcherprefs.StoreID = "Widgets"
	SwipePoints launcherprefs.StoreID = "SwipePoints"
)

// Debug store.
var (
	DebugEnabled             = launcherprefs.BoolKey("debug_enabled", false)
	DebugInfos               = launcherprefs.BoolKey("debug_infos", false)
	SettingsDebugInfo        = launcherprefs.BoolKey("settings_debug_info", false)
	WidgetsDebugInfo         = launcherprefs.BoolKey("widgets_debug_info", false)
	WorkspacesDebugInfo      = launcherprefs.BoolKey("workspaces_debug_info", false)
	ForceAppLanguageSelector = launcherprefs.BoolKey("force_app_language_selector", false)
)

// Drawer store.
var (
	AutoLaunchSingleMatch = launcherprefs.BoolKey("auto_launch_single_match", true)
	ShowAppIconsInDrawer  = launcherprefs.BoolKey("show_app_icons_in_drawer", true)
	SearchBarBottom       = launcherprefs.BoolKey("search_bar_bottom", true)
)

// Wallpaper store. Images are base64 encoded.
var (
	WallpaperUseOnMain        = launcherprefs.BoolKey("wallpaper_use_on_main", false)
	WallpaperUseOnDrawer      = launcherprefs.BoolKey("wallpaper_use_on_drawer", false)
	WallpaperMainBlurRadius   = launcherprefs.FloatKey("wallpaper_main_blur_radius", 0)
	WallpaperDrawerBlurRadius = launcherprefs.FloatKey("wallpaper_drawer_blur_radius", 0)
	WallpaperMainOriginal     = launcherprefs.StringKey("wallpaper_main_original_b64", "")
	WallpaperMainBlurred      = launcherprefs.StringKey("wallpaper_main_blurred_b64", "")
	WallpaperDrawerOriginal   = launcherprefs.StringKey("wallpaper_drawer_original_b64", "")
	WallpaperDrawerBlurred    = launcherprefs.StringKey("wallpaper_drawer_blurred_b64", "")
)

// Private store. Device-local state, never exported.
var (
	HasSeenWelcome               = launcherprefs.BoolKey("has_seen_welcome", false)
	HasInitialized               = launcherprefs.BoolKey("has_initialized", false)
	ShowSetDefaultLauncherBanner = launcherprefs.BoolKey("show_set_default_launcher_banner", true)
	UseAccessibilityForPanel     = launcherprefs.BoolKey("use_accessibility_instead_of_context", false)
	ShowMethodAsking             = launcherprefs.BoolKey("show_method_asking", true)
)

// ColorPickerMode selects the color editing widget.
type ColorPickerMode string

const (
	PickerSliders ColorPickerMode = "SLIDERS"
	PickerWheel   ColorPickerMode = "WHEEL"
	PickerHex     ColorPickerMode = "HEX"
)

// ColorCustomisationMode selects how much of the palette the user edits.
type ColorCustomisationMode string

const (
	CustomisationDefault ColorCustomisationMode = "DEFAULT"
	CustomisationNormal  ColorCustomisationMode = "NORMAL"
	CustomisationAll     ColorCustomisationMode = "ALL"
)

// Theme is a built-in base theme.
type Theme string

const (
	ThemeLight  Theme = "LIGHT"
	ThemeDark   Theme = "DARK"
	ThemeAmoled Theme = "AMOLED"
	ThemeSystem Theme = "SYSTEM"
)

// ColorModes store.
var (
	ColorPicker        = launcherprefs.EnumKey("color_picker_mode", PickerSliders, PickerSliders, PickerWheel, PickerHex)
	ColorCustomisation = launcherprefs.EnumKey("color_customisation_mode", CustomisationDefault, CustomisationDefault, CustomisationNormal, CustomisationAll)
	DefaultTheme       = launcherprefs.EnumKey("default_theme", ThemeAmoled, ThemeLight, ThemeDark, ThemeAmoled, ThemeSystem)
)

// Backup store. LastBackupTime is in Unix milliseconds.
var (
	AutoBackupEnabled = launcherprefs.BoolKey("auto_backup_enabled", false)
	AutoBackupURI     = launcherprefs.StringKey("auto_backup_uri", "").Sensitive()
	BackupStores      = launcherprefs.StringSetKey("backup_stores")
	LastBackupTime    = launcherprefs.IntKey("last_backup_time", 0)
)

// Definitions returns the launcher's store schemas in registration order.
func Definitions() ([]*launcherprefs.StoreDefinition, error) {
	schemas := []struct {
		id   launcherprefs.StoreID
		keys []launcherprefs.Definer
	}{
		{Debug, []launcherprefs.Definer{DebugEnabled, DebugInfos, SettingsDebugInfo, WidgetsDebugInfo, WorkspacesDebugInfo, ForceAppLanguageSelector}},
		{Drawer, []launcherprefs.Definer{AutoLaunchSingleMatch, ShowAppIconsInDrawer, SearchBarBottom}},
		{Wallpaper, []launcherprefs.Definer{WallpaperUseOnMain, WallpaperUseOnDrawer, WallpaperMainBlurRadius, WallpaperDrawerBlurRadius,
			WallpaperMainOriginal, WallpaperMainBlurred, WallpaperDrawerOriginal, WallpaperDrawerBlurred}},
		{Private, []launcherprefs.Definer{HasSeenWelcome, HasInitialized, ShowSetDefaultLauncherBanner, UseAccessibilityForPanel, ShowMethodAsking}},
		{ColorModes, []launcherprefs.Definer{ColorPicker, ColorCustomisation, DefaultTheme}},
		{Backup, []launcherprefs.Definer{AutoBackupEnabled, AutoBackupURI, BackupStores, LastBackupTime}},
		{Widgets, []launcherprefs.Definer{widgets.StateKey}},
		{SwipePoints, []launcherprefs.Definer{gesture.PointsKey}},
	}

	defs := make([]*launcherprefs.StoreDefinition, 0, len(schemas))
	for _, s := range schemas {
		def, err := launcherprefs.DefineStore(s.id, s.keys...)
		if err != nil {
			return nil, fmt.Errorf("define %s: %w", s.id, err)
		}
		switch s.id {
		case Private:
			def = def.WithoutBackup()
		case Widgets:
			def = def.WithBackupMapping(widgets.BackupEntry{})
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// NewRegistry returns a registry holding every launcher store.
func NewRegistry(ctx context.Context, opts ...launcherprefs.Option) (*launcherprefs.Registry, error) {
	defs, err := Definitions()
	if err != nil {
		return nil, err
	}
	reg := launcherprefs.New(opts...)
	for _, def := range defs {
		if _, err := reg.Register(ctx, def); err != nil {
			_ = reg.Close()
			return nil, err
		}
	}
	return reg, nil
}
