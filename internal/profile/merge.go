package profile

import "strings"

// Merge combines the main-page pass with the contact-info overlay pass.
//
//	website/url      overlay wins when present and different, else main (canonicalized)
//	email/phone/bday overlay wins when non-empty
//	additional info  overlay wins when strictly longer
//	everything else  main only
func Merge(main, overlay Record) Record {
	out := main

	out.URL = CanonicalURL(main.URL)
	if out.URL == "" {
		out.URL = CanonicalURL(overlay.URL)
	}

	mainSite := CanonicalURL(main.Website)
	overlaySite := CanonicalURL(overlay.Website)
	if overlaySite != "" && overlaySite != mainSite {
		out.Website = overlaySite
	} else {
		out.Website = mainSite
	}

	out.Email = preferNonEmpty(overlay.Email, main.Email)
	out.Phone = preferNonEmpty(overlay.Phone, main.Phone)
	out.Birthday = preferNonEmpty(overlay.Birthday, main.Birthday)

	if len(strings.TrimSpace(overlay.AdditionalInfo)) > len(strings.TrimSpace(main.AdditionalInfo)) {
		out.AdditionalInfo = overlay.AdditionalInfo
	}
	return out
}

func preferNonEmpty(primary, fallback string) string {
	if v := strings.TrimSpace(primary); v != "" {
		return v
	}
	return strings.TrimSpace(fallback)
}
