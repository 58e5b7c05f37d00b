package ai

import "strings"

const documentPrompt = `You are reading a scanned police report (FIR or lost-property complaint) submitted by
someone claiming a lost item.

Extract exactly these fields from the document:

* case_id: the FIR / complaint / case number exactly as printed (e.g. FIR/01/2025/487).
* file_date: the date the report was filed, exactly as printed.
* complainant_name: the full name of the complainant, in capitals.

Rules:

* Do NOT guess. If a field is missing or unreadable, return an empty string for it.
* If the image is not a police report at all, return empty strings for every field.
* Respond with a single JSON object and nothing else:
  {"case_id": "...", "file_date": "...", "complainant_name": "..."}`

const captionPrompt = `Describe the single main object in this photo for matching against other photos of
lost property. Mention object type, brand or logos, colours, material, distinctive marks,
stickers, scratches or damage. One paragraph, no more than 60 words, no speculation about the
owner or where it was found.`

// BuildCaptionPrompt appends an optional hint (e.g. the item category) to the caption prompt.
func BuildCaptionPrompt(hint string) string {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return captionPrompt
	}
	return captionPrompt + "\n\nThe object is expected to be: " + hint + "."
}
