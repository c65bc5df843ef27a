// Package browser manages a shared headless browser for providers that
// need to render pages. The browser process is expensive, so it is
// launched lazily on first use and shared by all scraping providers,
// with a semaphore bounding how many pages are open at once.
package browser
