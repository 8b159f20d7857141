package vfs

// Category groups file extensions for color mapping.
type Category int

const (
	CategoryOther Category = iota
	CategoryImage
	CategoryVideo
	CategoryAudio
	CategoryDocument
	CategoryEbook
	CategoryArchive
	CategoryCode
	CategoryExecutable
	CategoryConfig
	CategoryFont
	CategoryInstaller
	CategoryAsset3D
	CategoryBackup
	CategoryDatabase
	CategoryDiskImage
)

// String returns a short human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryImage:
		return "image"
	case CategoryVideo:
		return "video"
	case CategoryAudio:
		return "audio"
	case CategoryDocument:
		return "document"
	case CategoryEbook:
		return "ebook"
	case CategoryArchive:
		return "archive"
	case CategoryCode:
		return "code"
	case CategoryExecutable:
		return "executable"
	case CategoryConfig:
		return "config"
	case CategoryFont:
		return "font"
	case CategoryInstaller:
		return "installer"
	case CategoryAsset3D:
		return "3d-asset"
	case CategoryBackup:
		return "backup"
	case CategoryDatabase:
		return "database"
	case CategoryDiskImage:
		return "disk-image"
	default:
		return "other"
	}
}

var categories = map[string]Category{}

func init() {
	add := func(cat Category, exts ...string) {
		for _, e := range exts {
			categories[e] = cat
		}
	}
	add(CategoryImage, "jpg", "jpeg", "png", "gif", "bmp", "svg", "webp", "ico",
		"tiff", "tif", "raw", "cr2", "nef", "heic", "avif")
	add(CategoryVideo, "mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v",
		"mpg", "mpeg", "3gp", "ts")
	add(CategoryAudio, "mp3", "wav", "flac", "aac", "ogg", "wma", "m4a", "opus",
		"mid", "midi")
	add(CategoryDocument, "pdf", "doc", "docx", "txt", "rtf", "odt", "xls",
		"xlsx", "ppt", "pptx", "csv", "md")
	add(CategoryEbook, "epub", "mobi", "azw3", "djvu", "djv")
	add(CategoryArchive, "zip", "rar", "7z", "tar", "gz", "bz2", "xz", "zst",
		"lz4", "cab")
	add(CategoryCode, "rs", "py", "js", "jsx", "tsx", "c", "cpp", "h", "hpp",
		"java", "go", "rb", "php", "html", "htm", "css", "scss", "less",
		"swift", "kt", "cs", "lua", "sh", "bash", "zsh", "fish", "sql", "r",
		"dart", "zig", "wasm", "vue", "svelte")
	add(CategoryExecutable, "exe", "dll", "sys", "bat", "cmd", "ps1", "com",
		"scr", "so", "dylib", "elf")
	add(CategoryInstaller, "msi", "pkg", "deb", "rpm", "appimage")
	add(CategoryConfig, "ini", "cfg", "toml", "yaml", "yml", "json", "xml",
		"reg", "conf", "env", "properties", "lock")
	add(CategoryFont, "ttf", "otf", "woff", "woff2", "eot")
	add(CategoryAsset3D, "blend", "fbx", "obj", "stl", "dae", "gltf", "glb",
		"usd", "usdz")
	add(CategoryDatabase, "db", "sqlite", "sqlite3", "mdb", "accdb")
	add(CategoryDiskImage, "iso", "img", "vhd", "vhdx", "vmdk", "qcow2")
	add(CategoryBackup, "bak", "old", "backup")
}

// Categorize maps a file extension (without dot, any case) to a Category.
func Categorize(ext string) Category {
	if cat, ok := categories[lowerASCII(ext)]; ok {
		return cat
	}
	return CategoryOther
}
