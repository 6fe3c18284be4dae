package patterns

// =============================================================================
// DETECTOR DEFINITIONS BY CATEGORY
// All detectors are registered here and compiled once at first use.
// =============================================================================

// --- SENSITIVE CONTENT DETECTORS ---
// Terms whose presence in a prompt or response suggests secrets or restricted
// data are being exchanged with the model.
func (r *Registry) registerSensitiveDetectors() {
	cat := CategorySensitive

	r.register("password", `\bpassword\b`, cat, "Password mention")
	r.register("api_key", `\bapi\s*key\b`, cat, "API key mention")
	r.register("secret", `\bsecret\b`, cat, "Secret mention")
	r.register("database_access", `\bdatabase\s*access\b`, cat, "Database access request")
	r.register("private_data", `\bprivate\s*data\b`, cat, "Private data mention")
	r.register("credentials", `\bcredentials\b`, cat, "Credentials mention")
}

// --- JAILBREAK DETECTORS ---
// Phrasings that attempt to override instructions, escalate the assistant's
// role, or bypass safety behavior.
func (r *Registry) registerJailbreakDetectors() {
	cat := CategoryJailbreak

	r.register("instruction_override", `ignore\s+(previous|all)\s+instructions`, cat, "Instruction-override phrasing")
	r.register("role_escalation", `act\s+as\s+(system|admin)`, cat, "Role-escalation phrasing")
	r.register("safety_bypass", `bypass\s+safety`, cat, "Safety-bypass phrasing")
	r.register("developer_mode", `developer\s+mode`, cat, "Developer-mode request")
}
