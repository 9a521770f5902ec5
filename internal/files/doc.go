// Package files discovers the workbooks and exports under the resolved
// application directories.
//
// Discovery lists candidate workbooks in the data directory, used to point
// the user at a misnamed file when the configured workbook is missing, and
// the reports previously written to the exports directory.
//
// Example usage:
//
//	discovery := files.NewDiscovery(paths)
//	exports, err := discovery.Exports()
//	if latest, ok := files.GetLatestFile(exports); ok {
//	    fmt.Println(latest.Path)
//	}
package files
