package parser

import "regexp"

const monthPrefix = `(?:(?i:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?[ \t]+|\d{1,2}/)?`

// yearRe 年份或年份区间，例如 "2018"、"Jan 2018 – Mar 2020"、"2019 to Present"
var yearRe = regexp.MustCompile(`\b` + monthPrefix + `(?:19|20)\d{2}\b(?:[ \t]*(?:[-–—]|(?i:to))[ \t]*` + monthPrefix + `(?:(?:19|20)\d{2}\b|(?i:present|current)\b))?`)

// findYear 返回第一个年份 token 及其字节区间
func findYear(s string) (string, []int) {
	loc := yearRe.FindStringIndex(s)
	if loc == nil {
		return "", nil
	}
	return s[loc[0]:loc[1]], loc
}
