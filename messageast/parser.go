package messageast

// Parse lexes and parses raw chat text into a Message. Adjacent Text and
// Whitespace tokens collapse into a single node (a Text node if either
// contributor was Text, otherwise a Whitespace node); Command and Mention
// tokens always stand alone as their own word, since their boundaries are
// meaningful to a reader.
//
// The message as a whole is a command iff its first node is a KindCommand
// node starting at grapheme position 0.
func Parse(raw string) Message {
	toks := lex(raw)
	nodes := mergeRuns(toks)

	msg := Message{Raw: raw, Nodes: nodes}
	if len(nodes) > 0 && nodes[0].Kind == KindCommand && nodes[0].Span.Start == 0 {
		msg.IsCommand = true
		msg.CommandName = nodes[0].Name
	}
	return msg
}

func mergeRuns(toks []token) []Node {
	var nodes []Node

	i := 0
	for i < len(toks) {
		t := toks[i]
		if t.kind != KindText && t.kind != KindWhitespace {
			nodes = append(nodes, Node{Kind: t.kind, Span: t.span, Text: t.text, Name: t.name})
			i++
			continue
		}

		end := i + 1
		anyText := t.kind == KindText
		for end < len(toks) && (toks[end].kind == KindText || toks[end].kind == KindWhitespace) {
			if toks[end].kind == KindText {
				anyText = true
			}
			end++
		}

		kind := KindWhitespace
		if anyText {
			kind = KindText
		}
		text := ""
		for _, run := range toks[i:end] {
			text += run.text
		}
		nodes = append(nodes, Node{
			Kind: kind,
			Span: Span{toks[i].span.Start, toks[end-1].span.End},
			Text: text,
		})
		i = end
	}

	return nodes
}
