// Package scraper provides HTTP fetching and HTML parsing for basketball-reference.com.
//
// The scraper package fetches season team-totals pages, award voting pages, and player
// pages, and exposes each as a parsed goquery document. Requests share one client with
// a fixed User-Agent, a per-request timeout, bounded retries with exponential backoff
// on transport errors, 429, and 5xx responses, and a rate limiter that spaces requests
// the way the site asks automated clients to.
package scraper
