// Package connectors holds the remote drive clients. Each subpackage
// implements driven.RemoteDrive for one storage provider:
//
//   - workdrive: Zoho WorkDrive over its JSON:API endpoints
//   - google/drive: Google Drive, with labels stored as appProperties
//
// The retry package wraps transient failures with exponential backoff
// and is shared by both clients.
package connectors
