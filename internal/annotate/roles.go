// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import "strings"

// Canonical grammatical role codes. Annotations use the short form; the
// parser accepts full-word spellings and normalizes them.
const (
	RoleSubject        = "s"
	RoleVerb           = "v"
	RoleObject         = "o"
	RoleIndirectObject = "io"
	RoleComplement     = "c"
	RoleRelativeClause = "rel"
	RolePrepPhrase     = "prep"
	RoleAdverbial      = "adv"
	RoleAppositive     = "app"
	RolePassiveMarker  = "pass"
	RoleConnective     = "con"
	RoleInfinitive     = "inf"
	RoleGerund         = "ger"
	RoleParticiple     = "part"
)

// roleAliases maps every accepted spelling (lowercase) to its canonical code.
var roleAliases = map[string]string{
	"s":       RoleSubject,
	"subj":    RoleSubject,
	"subject": RoleSubject,

	"v":    RoleVerb,
	"verb": RoleVerb,

	"o":      RoleObject,
	"obj":    RoleObject,
	"object": RoleObject,

	"io":              RoleIndirectObject,
	"indirect object": RoleIndirectObject,
	"indirect_object": RoleIndirectObject,

	"c":          RoleComplement,
	"comp":       RoleComplement,
	"complement": RoleComplement,

	"rel":             RoleRelativeClause,
	"relative":        RoleRelativeClause,
	"relative clause": RoleRelativeClause,
	"relative_clause": RoleRelativeClause,

	"prep":                 RolePrepPhrase,
	"pp":                   RolePrepPhrase,
	"prepositional phrase": RolePrepPhrase,
	"prepositional_phrase": RolePrepPhrase,

	"adv":       RoleAdverbial,
	"adverbial": RoleAdverbial,

	"app":        RoleAppositive,
	"appositive": RoleAppositive,

	"pass":           RolePassiveMarker,
	"passive":        RolePassiveMarker,
	"passive marker": RolePassiveMarker,
	"passive_marker": RolePassiveMarker,

	"con":         RoleConnective,
	"conj":        RoleConnective,
	"connective":  RoleConnective,
	"conjunction": RoleConnective,

	"inf":        RoleInfinitive,
	"infinitive": RoleInfinitive,

	"ger":    RoleGerund,
	"gerund": RoleGerund,

	"part":       RoleParticiple,
	"participle": RoleParticiple,
}

// NormalizeRole lower-cases role and resolves it against the vocabulary.
// The second return is false for unrecognized roles, which callers drop
// without failing the batch.
func NormalizeRole(role string) (string, bool) {
	code, ok := roleAliases[strings.ToLower(strings.TrimSpace(role))]
	return code, ok
}
