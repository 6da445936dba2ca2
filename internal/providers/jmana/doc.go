// Package jmana implements providers.Source for the JMana manga site.
// Listings, details, chapter lists and page images are read from the
// site's server-rendered HTML with fixed CSS selectors; chapter numbers
// and upload dates are derived from the listing text by MetaParser.
package jmana
