// Package site turns a content tree of Markdown pages into a static site.
//
// A build copies the static directory into the output, renders every .md file
// under the content directory through the page template, copies every other
// content file verbatim, and optionally writes sitemap.xml. Pages are rendered
// by a bounded pool of workers; the first failing page cancels the build.
package site
