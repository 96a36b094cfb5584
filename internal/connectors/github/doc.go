// Package github implements a corpus source for the markdown files of one
// GitHub repository branch.
//
// The file list comes from the recursive Git Trees API (a single request for
// the whole repository). File content is downloaded from
// raw.githubusercontent.com, which does not count against the REST API quota.
//
// # Authentication
//
// A token is optional. Public repositories can be read anonymously, but the
// REST API then allows only 60 requests per hour. With a personal access
// token the limit is 5,000 per hour.
//
// # Rate Limiting
//
// Requests pass through a token bucket (about 1.2 requests per second by
// default). The limiter also tracks X-RateLimit-Remaining and
// X-RateLimit-Reset and waits for the reset once the remaining quota drops
// below a small reserve.
//
// # Document URLs
//
// Each file's URL is https://github.com/{owner}/{repo}/blob/{branch}/{path}.
package github
