package chunking

// AddChunkRelationships links every chunk to the other chunks sharing at
// least one concept. It must run after all chunks are enriched and mutates
// the slice in place.
func AddChunkRelationships(chunks []SmartChunk) {
	index := make(map[string][]string)
	for _, ch := range chunks {
		for _, concept := range ch.Metadata.Concepts {
			index[concept] = append(index[concept], ch.ID)
		}
	}

	for i := range chunks {
		self := chunks[i].ID
		seen := map[string]bool{self: true}
		related := make([]string, 0)

		for _, concept := range chunks[i].Metadata.Concepts {
			for _, id := range index[concept] {
				if seen[id] {
					continue
				}
				seen[id] = true
				related = append(related, id)
			}
		}
		chunks[i].Metadata.RelatedChunks = related
	}
}
