package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Upload Errors (D100-D199)
	// ============================================

	"D101": {
		Category:   CategoryUpload,
		Message:    "Unsupported file type",
		Detail:     "Only the configured image types are accepted.",
		Suggestion: "Convert the file to JPEG or PNG, or add its type to upload.acceptedMimeTypes",
	},
	"D102": {
		Category:   CategoryUpload,
		Message:    "File too large",
		Detail:     "The file exceeds the configured size limit.",
		Suggestion: "Compress the image or raise upload.maxSizeMB",
	},
	"D103": {
		Category:   CategoryUpload,
		Message:    "Not signed in",
		Detail:     "Uploads are only accepted from signed-in users.",
		Suggestion: "Drop the --signed-out flag",
	},
	"D104": {
		Category: CategoryUpload,
		Message:  "File could not be read",
		Detail:   "The accepted file could not be converted to a data URL.",
	},
	"D105": {
		Category: CategoryUpload,
		Message:  "Widget closed",
		Detail:   "The upload widget was torn down before the file completed.",
	},
	"D106": {
		Category: CategoryUpload,
		Message:  "Upload already completed",
		Detail:   "The widget has already delivered a file. Reset it to upload another.",
	},

	// ============================================
	// Config Errors (D200-D299)
	// ============================================

	"D201": {
		Category:   CategoryConfig,
		Message:    "Config file not found",
		Detail:     "No dropzone.json was found in this directory or any parent.",
		Suggestion: "Run 'dropzone init' to create one",
	},
	"D202": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "dropzone.json is not valid JSON.",
	},
	"D203": {
		Category:   CategoryConfig,
		Message:    "Invalid size limit",
		Detail:     "upload.maxSizeMB must be a positive number of megabytes.",
		Suggestion: `Set "maxSizeMB": 50`,
	},
	"D204": {
		Category: CategoryConfig,
		Message:  "Invalid accepted types",
		Detail:   "upload.acceptedMimeTypes entries must be MIME types such as image/png.",
	},
	"D205": {
		Category: CategoryConfig,
		Message:  "Invalid progress settings",
		Detail:   "upload.progressStep must be between 1 and 100 and upload.progressIntervalMs must not be negative.",
	},
	"D206": {
		Category: CategoryConfig,
		Message:  "Invalid inspector address",
		Detail:   "inspector.port must be between 0 and 65535.",
	},
	"D207": {
		Category: CategoryConfig,
		Message:  "Config write failed",
		Detail:   "dropzone.json could not be written.",
	},
	"D208": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "logLevel must be one of debug, info, warn or error.",
	},

	// ============================================
	// CLI Errors (D300-D399)
	// ============================================

	"D301": {
		Category: CategoryCLI,
		Message:  "File not found",
		Detail:   "The path does not exist or cannot be opened.",
	},
	"D302": {
		Category:   CategoryCLI,
		Message:    "No matching file",
		Detail:     "The directory has no file matching the accept filter.",
		Suggestion: "Pass a JPEG or PNG file directly",
	},
	"D303": {
		Category: CategoryCLI,
		Message:  "Output write failed",
		Detail:   "The data URL could not be written to the output file.",
	},
	"D304": {
		Category: CategoryCLI,
		Message:  "Inspector failed",
		Detail:   "The inspector server could not listen on the requested address.",
	},
	"D305": {
		Category: CategoryCLI,
		Message:  "Upload interrupted",
		Detail:   "The run ended before the widget delivered the file.",
	},
	"D306": {
		Category:   CategoryCLI,
		Message:    "Config file exists",
		Detail:     "dropzone.json already exists in this directory.",
		Suggestion: "Pass --force to overwrite it",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
