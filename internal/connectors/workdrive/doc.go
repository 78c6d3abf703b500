// Package workdrive implements the remote drive port against the Zoho
// WorkDrive REST API.
//
// Listing walks team folders (/teamfolders/{id}/files) and plain folders
// (/files/{id}/files) with offset pagination:
//
//	page[limit]=50&page[offset]=0&filter[type]=all
//
// Payloads are JSON:API shaped, with item fields under data[].attributes.
// Labels are written through data templates: a template is created once,
// attached to a file on demand and its values updated with PATCH.
//
// Every request carries "Authorization: <scheme> <token>" and, when an
// organisation id is configured, "X-ORG-ID". Transient failures (429,
// 500, 502, 503, 504 and transport errors) are retried with exponential
// backoff; everything else fails immediately.
package workdrive
