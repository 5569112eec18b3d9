// Package config provides configuration parsing for the dropzone command.
//
// The configuration is stored in dropzone.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "upload": {
//	    "maxSizeMB": 50,
//	    "acceptedMimeTypes": ["image/jpeg", "image/png"],
//	    "accept": ".jpg,.jpeg,.png,image/jpeg,image/png",
//	    "progressIntervalMs": 100,
//	    "progressStep": 15,
//	    "completeDelayMs": 600
//	  },
//	  "inspector": {
//	    "host": "localhost",
//	    "port": 7070
//	  },
//	  "logLevel": "info"
//	}
//
// Missing fields take the widget defaults.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	w := upload.New(cfg.WidgetConfig())
package config
