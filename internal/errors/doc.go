// Package errors provides coded, actionable diagnostics for the dropzone
// command line.
//
// Each diagnostic has a code that maps to a registered template:
//   - D1xx: upload errors (rejected or unreadable files)
//   - D2xx: configuration errors (dropzone.json)
//   - D3xx: command line errors (paths, output, inspector)
//
// # Usage
//
//	err := errors.New("D201").WithPath(dir)
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR D201: Config file not found
//	//
//	//   /home/me/project
//	//
//	//   No dropzone.json was found in this directory or any parent.
//	//
//	//   Hint: Run 'dropzone init' to create one
//
// Errors returned by an upload widget convert with FromUpload, which keeps
// the widget's user-facing message as the detail.
package errors
