package knowledge

import "strings"

// Split cuts a document into chunks of at most chunkSize characters,
// preferring paragraph boundaries and carrying overlap characters of trailing
// context into the next chunk so answers that straddle a cut stay findable.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	var current strings.Builder

	flush := func() string {
		chunk := strings.TrimSpace(current.String())
		current.Reset()
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		return chunk
	}

	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		// Paragraphs larger than a chunk are cut hard.
		for len(para) > chunkSize {
			if current.Len() > 0 {
				flush()
			}
			current.WriteString(para[:chunkSize])
			tail := tailOf(flush(), overlap)
			para = tail + para[chunkSize:]
			if overlap == 0 {
				para = strings.TrimSpace(para)
			}
		}

		if current.Len() > 0 && current.Len()+len(para)+2 > chunkSize {
			if tail := tailOf(flush(), overlap); tail != "" {
				current.WriteString(tail)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(para)
	}
	flush()

	return chunks
}

// tailOf returns the last n characters of a chunk, cut at a space where
// possible so the overlap does not start mid-word.
func tailOf(chunk string, n int) string {
	if n <= 0 || chunk == "" {
		return ""
	}
	if len(chunk) <= n {
		return chunk
	}
	tail := chunk[len(chunk)-n:]
	if i := strings.IndexByte(tail, ' '); i >= 0 && i < len(tail)-1 {
		tail = tail[i+1:]
	}
	return tail
}
