// Package translators is the built-in translator catalogue: ports of the
// classic Java-to-C# sample translators plus template and literal
// translators configured from gtrans.toml.
//
// Built-ins are found by name. Lookup accepts the catalogue name
// ("implicit-type"), its CamelCase form ("ImplicitType") and the CamelCase
// form with a Translator suffix ("ImplicitTypeTranslator").
package translators
