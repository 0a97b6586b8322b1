package mydb

var RequestCount = requestCount
