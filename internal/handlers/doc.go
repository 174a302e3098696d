// Package handlers implements the HTTP API and the delivery layer.
//
// The JSON API under /api/media covers upload, listing, requeue,
// forced reprocess and deletion of media items. Delivery under /media
// serves two kinds of content with different rules: HLS manifests and
// segments go out as cacheable static assets, while original media
// files get Range support with chunk sizes chosen per device class.
package handlers
