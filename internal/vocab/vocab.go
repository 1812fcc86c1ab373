// Package vocab holds the fixed word lists that drive sentence curation,
// term masking and distractor selection. The lists are plain data so a
// deployment (or a test) can swap them through configuration.
package vocab

// Vocabulary groups every closed word list used by the quiz pipeline.
type Vocabulary struct {
	// Terms are candidate MCQ answers, in priority order.
	Terms []string `yaml:"terms"`
	// Keywords gate sentences into the quiz material (domain filter).
	Keywords []string `yaml:"keywords"`
	// Auxiliaries gate sentences that look like statements.
	Auxiliaries []string `yaml:"auxiliaries"`
	// NegationAnchors are the verbs after which "not" is inserted.
	NegationAnchors []string `yaml:"negation_anchors"`
	// Fallback pads distractors when the pool runs dry.
	Fallback []string `yaml:"fallback"`
}

// Default returns the built-in network security vocabulary.
func Default() Vocabulary {
	return Vocabulary{
		Terms: []string{
			// concepts
			"firewall", "proxy", "vpn", "ids", "ips", "waf", "nat", "segmentation", "zero trust",
			"encryption", "decryption", "cipher", "key", "nonce", "salt", "handshake", "certificate",
			"authentication", "authorization", "accounting", "auditing", "integrity", "availability", "confidentiality",
			"hash", "mac", "signature", "tls", "ssl", "https", "ipsec", "ssh", "kerberos", "saml", "oauth",
			// attacks
			"ddos", "dos", "phishing", "malware", "ransomware", "botnet", "mitm", "replay",
			// defenses
			"sandbox", "honeypot", "siem", "soar", "edr", "xdr", "antivirus", "whitelisting", "blacklisting",
			"aaa", "radius", "tacacs", "bastion", "dmz", "subnet", "vlan", "qos", "spoofing",
		},
		Keywords: []string{
			"security", "secure", "attack", "attacks", "threat", "risk", "firewall", "vpn", "ids", "ips", "waf",
			"encryption", "cipher", "key", "certificate", "tls", "https", "ipsec", "ssh",
			"authentication", "authorization", "integrity", "availability", "confidentiality", "hash", "mac",
			"malware", "phishing", "ddos", "mitm", "proxy", "segmentation", "dmz", "siem", "edr", "xdr",
		},
		Auxiliaries: []string{
			"is", "are", "was", "were", "be", "being", "been", "has", "have", "had",
			"can", "could", "should", "would", "may", "might", "must", "do", "does", "did",
			"provide", "use", "include", "support", "supports",
		},
		NegationAnchors: []string{
			"is", "are", "was", "were", "can", "could", "should", "would",
			"do", "does", "did", "has", "have", "had",
		},
		Fallback: []string{"firewall", "vpn", "ids", "ips", "tls", "hash", "cipher", "nonce", "dmz", "proxy", "waf"},
	}
}

// WithDefaults fills every empty list from Default.
func (v Vocabulary) WithDefaults() Vocabulary {
	d := Default()
	if len(v.Terms) == 0 {
		v.Terms = d.Terms
	}
	if len(v.Keywords) == 0 {
		v.Keywords = d.Keywords
	}
	if len(v.Auxiliaries) == 0 {
		v.Auxiliaries = d.Auxiliaries
	}
	if len(v.NegationAnchors) == 0 {
		v.NegationAnchors = d.NegationAnchors
	}
	if len(v.Fallback) == 0 {
		v.Fallback = d.Fallback
	}
	return v
}
